package alloc

import (
	"sort"
	"strings"

	"hostel-allocation-backend/internal/model"
)

// buildingRank maps a building name to its selection rank. Listed buildings
// rank by position (first entry ranks 1); unlisted buildings rank after
// every listed one.
func buildingRank(name string, priority []string) int {
	for i, p := range priority {
		if strings.EqualFold(p, name) {
			return i + 1
		}
	}
	return len(priority) + 1
}

// SortRooms orders rooms for selection: building priority rank, then floor
// number descending, then room number ascending. The ordering is total, so
// selection is deterministic for any fixed room set.
func SortRooms(rooms []model.Room, priority []string) {
	sort.Slice(rooms, func(i, j int) bool {
		ri, rj := buildingRank(rooms[i].BuildingName, priority), buildingRank(rooms[j].BuildingName, priority)
		if ri != rj {
			return ri < rj
		}
		if rooms[i].FloorNumber != rooms[j].FloorNumber {
			return rooms[i].FloorNumber > rooms[j].FloorNumber
		}
		if rooms[i].RoomNumber != rooms[j].RoomNumber {
			return rooms[i].RoomNumber < rooms[j].RoomNumber
		}
		return rooms[i].ID < rooms[j].ID
	})
}
