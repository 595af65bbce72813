package calendar

import (
	"iter"
	"time"

	"cloud.google.com/go/civil"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"

	"github.com/klokku/eventcal/internal/utils"
)

// Expander turns recurring base events into their derived occurrences. The horizon is
// the only bound on a series, so every date up to it is produced however old the series is.
type Expander struct{}

func NewExpander() *Expander {
	return &Expander{}
}

// DefaultHorizon is one year from today.
func DefaultHorizon(clock utils.Clock) civil.Date {
	today := civil.DateOf(clock.Now())
	return civil.DateOf(today.In(time.UTC).AddDate(1, 0, 0))
}

// Expand yields the occurrences of e strictly after its base date up to and including
// horizon. Non-recurring events yield nothing. The sequence holds no state between
// iterations, so ranging over it twice gives the same result.
func (x *Expander) Expand(e Event, horizon civil.Date) iter.Seq[Occurrence] {
	return func(yield func(Occurrence) bool) {
		if !e.IsRecurring() || horizon.Before(e.Date) || horizon == e.Date {
			return
		}
		opt, ok := ruleOptions(e)
		if !ok {
			log.Warnf("event %s has unsupported recurrence %q, not expanding", e.ID, e.Recurrence)
			return
		}
		opt.Until = horizon.In(time.UTC)
		rule, err := rrule.NewRRule(opt)
		if err != nil {
			log.Errorf("could not build recurrence rule for event %s: %v", e.ID, err)
			return
		}

		next := rule.Iterator()
		for {
			t, ok := next()
			if !ok {
				return
			}
			date := civil.DateOf(t)
			if !e.Date.Before(date) {
				continue
			}
			if !yield(derivedOccurrence(e, date)) {
				return
			}
		}
	}
}

// All yields every base event followed by the expansion of every recurring one.
func (x *Expander) All(events []Event, horizon civil.Date) iter.Seq[Occurrence] {
	return func(yield func(Occurrence) bool) {
		for _, e := range events {
			if !yield(baseOccurrence(e)) {
				return
			}
		}
		for _, e := range events {
			if !e.IsRecurring() {
				continue
			}
			for occ := range x.Expand(e, horizon) {
				if !yield(occ) {
					return
				}
			}
		}
	}
}

// ruleOptions maps an event's recurrence to an RRULE anchored at its base date.
// Monthly series keep the base day of month and clamp it to the last day of shorter
// months: BYMONTHDAY=28..d with BYSETPOS=-1 picks min(d, days in month).
func ruleOptions(e Event) (rrule.ROption, bool) {
	opt := rrule.ROption{
		Dtstart:  e.Date.In(time.UTC),
		Interval: 1,
	}
	switch e.Recurrence {
	case RecurrenceDaily:
		opt.Freq = rrule.DAILY
	case RecurrenceWeekly:
		opt.Freq = rrule.WEEKLY
	case RecurrenceMonthly:
		opt.Freq = rrule.MONTHLY
		day := e.Date.Day
		if day <= 28 {
			opt.Bymonthday = []int{day}
		} else {
			for d := 28; d <= day; d++ {
				opt.Bymonthday = append(opt.Bymonthday, d)
			}
			opt.Bysetpos = []int{-1}
		}
	case RecurrenceCustom:
		opt.Freq = rrule.DAILY
		opt.Interval = e.Interval()
	default:
		return rrule.ROption{}, false
	}
	return opt, true
}
