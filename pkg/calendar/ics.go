package calendar

import (
	"time"

	ics "github.com/arran4/golang-ical"
)

const icsProductID = "-//klokku//eventcal//EN"

// ExportICS renders base events as an iCalendar document. Recurring events carry the
// same rule the expander uses, without an end. Times are floating, matching the
// calendar's naive dates; timed events last one hour.
func ExportICS(events []Event, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, e := range events {
		vevent := cal.AddEvent(e.ID + "@eventcal")
		vevent.SetDtStampTime(stamp.UTC())
		vevent.SetSummary(e.Title)
		if e.Description != "" {
			vevent.SetDescription(e.Description)
		}

		start := e.Date.In(time.UTC)
		if clock, err := time.Parse(timeLayout, e.Time); e.Time != "" && err == nil {
			start = start.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
			vevent.SetProperty(ics.ComponentPropertyDtStart, start.Format("20060102T150405"))
			vevent.SetProperty(ics.ComponentPropertyDtEnd, start.Add(time.Hour).Format("20060102T150405"))
		} else {
			vevent.SetAllDayStartAt(start)
			vevent.SetAllDayEndAt(start.AddDate(0, 0, 1))
		}

		if opt, ok := ruleOptions(e); ok && e.IsRecurring() {
			vevent.AddRrule(opt.RRuleString())
		}
	}
	return cal.Serialize()
}
