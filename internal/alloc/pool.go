package alloc

import (
	"sort"
	"time"

	"hostel-allocation-backend/internal/model"
)

// CandidateSource tags where a reallocation candidate came from.
type CandidateSource string

const (
	FromActiveAllocation CandidateSource = "active_allocation"
	FromWaitingList      CandidateSource = "waiting_list"
)

// Candidate is one applicant competing for a seat in a reallocation run.
type Candidate struct {
	ApplicantID int64
	Score       float64
	Source      CandidateSource
	// AddedOn carries the original waiting-list timestamp for candidates
	// drawn from the waiting list, so tie-breaking order survives a run
	// that waitlists them again. Zero for current occupants.
	AddedOn time.Time
}

// BuildPool merges current occupants and waiting applicants into a single
// pool sorted by score descending, ties broken by applicant ID ascending.
// An applicant appearing in both sources (which the store invariants forbid)
// is counted once, as an occupant.
func BuildPool(active []model.Allocation, waiting []model.WaitingEntry) []Candidate {
	seen := make(map[int64]bool, len(active))
	pool := make([]Candidate, 0, len(active)+len(waiting))

	for _, a := range active {
		if seen[a.ApplicantID] {
			continue
		}
		seen[a.ApplicantID] = true
		pool = append(pool, Candidate{
			ApplicantID: a.ApplicantID,
			Score:       a.Score,
			Source:      FromActiveAllocation,
		})
	}
	for _, w := range waiting {
		if seen[w.ApplicantID] {
			continue
		}
		seen[w.ApplicantID] = true
		pool = append(pool, Candidate{
			ApplicantID: w.ApplicantID,
			Score:       w.Score,
			Source:      FromWaitingList,
			AddedOn:     w.AddedOn,
		})
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Score != pool[j].Score {
			return pool[i].Score > pool[j].Score
		}
		return pool[i].ApplicantID < pool[j].ApplicantID
	})
	return pool
}

// seatPlan assigns a slice of candidates to one room.
type seatPlan struct {
	Room       model.Room
	Candidates []Candidate
}

// planAssignments walks rooms in selection order and fills each up to its
// capacity from the front of the pool. It returns the per-room plans and the
// candidates left over for the waiting list, in pool order.
func planAssignments(rooms []model.Room, pool []Candidate) ([]seatPlan, []Candidate) {
	plans := make([]seatPlan, 0, len(rooms))
	cursor := 0
	for _, room := range rooms {
		if cursor >= len(pool) {
			break
		}
		n := room.Capacity
		if remaining := len(pool) - cursor; n > remaining {
			n = remaining
		}
		if n <= 0 {
			continue
		}
		plans = append(plans, seatPlan{Room: room, Candidates: pool[cursor : cursor+n]})
		cursor += n
	}
	return plans, pool[cursor:]
}
