package calendar

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

const derivedSeparator = "@"

// OccurrenceID identifies one calendar-visible occurrence. A base occurrence is the
// event itself; a derived one is a single date of a recurring series.
// The zero value identifies nothing.
type OccurrenceID struct {
	baseID  string
	date    civil.Date
	derived bool
}

// BaseID returns the id of a base occurrence.
func BaseID(id string) OccurrenceID {
	return OccurrenceID{baseID: id}
}

// DerivedID returns the id of the occurrence of series baseID on date.
func DerivedID(baseID string, date civil.Date) OccurrenceID {
	return OccurrenceID{baseID: baseID, date: date, derived: true}
}

// ParseOccurrenceID parses the text form produced by OccurrenceID.String.
func ParseOccurrenceID(s string) (OccurrenceID, error) {
	if s == "" {
		return OccurrenceID{}, fmt.Errorf("%w: empty occurrence id", ErrValidation)
	}
	base, dateStr, found := strings.Cut(s, derivedSeparator)
	if !found {
		return BaseID(s), nil
	}
	if base == "" {
		return OccurrenceID{}, fmt.Errorf("%w: occurrence id %q has no base id", ErrValidation, s)
	}
	date, err := civil.ParseDate(dateStr)
	if err != nil {
		return OccurrenceID{}, fmt.Errorf("%w: occurrence id %q has invalid date: %v", ErrValidation, s, err)
	}
	return DerivedID(base, date), nil
}

// EventID is the id of the base event that owns the occurrence.
func (id OccurrenceID) EventID() string { return id.baseID }

// Derived reports whether id refers to a generated occurrence of a series.
func (id OccurrenceID) Derived() bool { return id.derived }

// Date is the occurrence date of a derived id; zero for base ids.
func (id OccurrenceID) Date() civil.Date { return id.date }

func (id OccurrenceID) IsZero() bool { return id == OccurrenceID{} }

func (id OccurrenceID) String() string {
	if !id.derived {
		return id.baseID
	}
	return id.baseID + derivedSeparator + id.date.String()
}

func (id OccurrenceID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *OccurrenceID) UnmarshalText(text []byte) error {
	parsed, err := ParseOccurrenceID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Occurrence is a calendar-visible instance of an event. Occurrences are derived on
// every read and never stored.
type Occurrence struct {
	Event
	ID          OccurrenceID `json:"id"`
	IsRecurring bool         `json:"isRecurring"`
	OriginalID  string       `json:"originalId,omitempty"`
}

func baseOccurrence(e Event) Occurrence {
	return Occurrence{Event: e, ID: BaseID(e.ID)}
}

func derivedOccurrence(e Event, date civil.Date) Occurrence {
	occ := Occurrence{
		Event:       e,
		ID:          DerivedID(e.ID, date),
		IsRecurring: true,
		OriginalID:  e.ID,
	}
	occ.Event.Date = date
	return occ
}

// Slot is the date/time cell two occurrences must share to collide.
func (o Occurrence) Slot() Slot {
	return Slot{Date: o.Date, Time: o.Time}
}
