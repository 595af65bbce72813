package calendar

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/klokku/eventcal/internal/utils"
)

const (
	GridRows    = 6
	GridColumns = 7
	GridCells   = GridRows * GridColumns
)

// GridFor returns the dates a month view renders: six Sunday-first weeks starting on the
// Sunday on or before the 1st of month.
func GridFor(year int, month time.Month) [GridCells]civil.Date {
	first := civil.Date{Year: year, Month: month, Day: 1}
	if !first.IsValid() {
		// out-of-range months roll over the same way time.Date does
		first = civil.DateOf(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
	}
	offset := int(first.In(time.UTC).Weekday() - time.Sunday)
	start := first.AddDays(-offset)

	var cells [GridCells]civil.Date
	for i := range cells {
		cells[i] = start.AddDays(i)
	}
	return cells
}

// InMonth reports whether a grid cell belongs to the month being viewed.
func InMonth(cell civil.Date, year int, month time.Month) bool {
	return cell.Year == year && cell.Month == month
}

// IsToday reports whether cell is the clock's current date.
func IsToday(cell civil.Date, clock utils.Clock) bool {
	return cell == civil.DateOf(clock.Now())
}
