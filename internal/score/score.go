// Package score computes the priority score used to rank hostel seat
// applicants. The score is a composite of three equally weighted components:
// year of study, academic standing (merit rank for first-years, CGPA
// otherwise) and home-address proximity to the institution.
package score

import (
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Weight of each score component. The three components together span [0,100].
const componentWeight = 33.33

const maxYear = 4
const maxCGPA = 4.0

// Policy fixes the geography for the address component.
type Policy struct {
	HomeCity           string
	AdjoiningDistricts []string
}

// Input carries the applicant attributes the calculator needs. Zero or
// out-of-range values contribute nothing rather than failing the calculation.
type Input struct {
	Year        int
	CGPA        float64
	MeritRank   int
	HomeAddress string
}

// Calculate returns the priority score in [0,100], rounded to 2 decimals.
func Calculate(in Input, p Policy) float64 {
	total := yearComponent(in.Year) + academicComponent(in) + addressComponent(in.HomeAddress, p)
	return Round2(total)
}

func yearComponent(year int) float64 {
	if year < 1 || year > maxYear {
		return 0
	}
	return float64(year) / maxYear * componentWeight
}

func academicComponent(in Input) float64 {
	if in.Year == 1 && in.MeritRank > 0 {
		// Inverse rank: rank 1 earns the full component, larger ranks less.
		return 1 / float64(in.MeritRank) * componentWeight
	}
	cgpa := in.CGPA
	if cgpa < 0 || math.IsNaN(cgpa) {
		return 0
	}
	if cgpa > maxCGPA {
		cgpa = maxCGPA
	}
	return cgpa / maxCGPA * componentWeight
}

func addressComponent(address string, p Policy) float64 {
	return addressWeight(address, p) * componentWeight
}

// addressWeight maps an applicant's home address to a distance factor:
// 0 for the institution's home city, 0.5 for adjoining districts, 1 for
// anywhere else. A missing address contributes nothing.
func addressWeight(address string, p Policy) float64 {
	if strings.TrimSpace(address) == "" {
		return 0
	}
	lower := strings.ToLower(address)
	if p.HomeCity != "" && strings.Contains(lower, strings.ToLower(p.HomeCity)) {
		return 0
	}
	for _, district := range p.AdjoiningDistricts {
		if strings.Contains(lower, strings.ToLower(district)) {
			return 0.5
		}
	}
	return 1
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseFloat leniently parses a numeric field. Unparseable input degrades to
// zero contribution instead of failing the request, but is logged so bad
// intake data stays visible.
func ParseFloat(field, raw string, log logrus.FieldLogger) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if log != nil {
			log.WithFields(logrus.Fields{"field": field, "value": raw}).
				Warn("unparseable numeric field, treating as zero contribution")
		}
		return 0, false
	}
	return v, true
}

// ParseInt is the integer counterpart of ParseFloat.
func ParseInt(field, raw string, log logrus.FieldLogger) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		if log != nil {
			log.WithFields(logrus.Fields{"field": field, "value": raw}).
				Warn("unparseable numeric field, treating as zero contribution")
		}
		return 0, false
	}
	return v, true
}
