package types

import "fmt"

// Time is a duration in game ticks since year 0
type Time int64

const (
	TicksPerDay    Time = 1200
	TicksPerWeek        = TicksPerDay * 7
	TicksPerMonth       = TicksPerDay * 28
	TicksPerSeason      = TicksPerMonth * 3
	TicksPerYear        = TicksPerMonth * 12
)

var monthNames = [12]string{
	"Granite",
	"Slate",
	"Felsite",
	"Hematite",
	"Malachite",
	"Galena",
	"Limestone",
	"Sandstone",
	"Timber",
	"Moonstone",
	"Opal",
	"Obsidian",
}

var seasonNames = [4]string{
	"Spring",
	"Summer",
	"Autumn",
	"Winter",
}

// Date is a calendar position; Month and Day are zero-based
type Date struct {
	Year  int64
	Month int
	Day   int
}

// Date decomposes t into year, month and day
func (t Time) Date() Date {
	year := t / TicksPerYear
	rest := t - year*TicksPerYear
	month := rest / TicksPerMonth
	rest -= month * TicksPerMonth
	return Date{
		Year:  int64(year),
		Month: int(month),
		Day:   int(rest / TicksPerDay),
	}
}

func (t Time) String() string {
	return t.Date().String()
}

// MonthName returns the name of the month
func (d Date) MonthName() string {
	if d.Month < 0 || d.Month >= len(monthNames) {
		return fmt.Sprintf("Month(%d)", d.Month)
	}
	return monthNames[d.Month]
}

// Season returns the name of the season the date falls in
func (d Date) Season() string {
	if d.Month < 0 || d.Month >= len(monthNames) {
		return ""
	}
	return seasonNames[d.Month/3]
}

// String formats the date as "1st Granite 125"
func (d Date) String() string {
	day := d.Day + 1
	return fmt.Sprintf("%d%s %s %d", day, ordinalSuffix(day), d.MonthName(), d.Year)
}

func ordinalSuffix(day int) string {
	switch day {
	case 1, 21:
		return "st"
	case 2, 22:
		return "nd"
	case 3, 23:
		return "rd"
	default:
		return "th"
	}
}
