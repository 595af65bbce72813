package calendar

import (
	"iter"

	"cloud.google.com/go/civil"
)

// Slot is a date plus an optional HH:MM time. Two all-day slots on the same date are equal.
type Slot struct {
	Date civil.Date
	Time string
}

// FindConflicts returns every occurrence in all that sits in the candidate slot, except
// the one identified by exclude.
func FindConflicts(all iter.Seq[Occurrence], candidate Slot, exclude OccurrenceID) []Occurrence {
	var conflicts []Occurrence
	for occ := range all {
		if occ.ID == exclude {
			continue
		}
		if occ.Slot() == candidate {
			conflicts = append(conflicts, occ)
		}
	}
	return conflicts
}
