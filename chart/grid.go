package chart

import (
	"fmt"
	"time"

	"github.com/buffos/lifeweeks/geometry"
)

// WeeksPerRow is the number of week columns in a chart row.
const WeeksPerRow = 52

// DatePosition is a grid coordinate resolved from a calendar date:
// Week is the 1-based column, Year the 0-based row (year of life).
type DatePosition struct {
	Point geometry.Point
	Date  time.Time
	Week  int
	Year  int
}

func (d DatePosition) String() string {
	return fmt.Sprintf("DatePosition: year(%d), week(%d), date(%s)", d.Year, d.Week, d.Date.Format("2006-01-02"))
}

// elapsedYears counts whole calendar years between birthdate and date,
// so that every anniversary of the birthdate starts a new row. A naive
// days/365 division drifts across leap years and is deliberately not
// used here.
func elapsedYears(birthdate, date time.Time) int {
	years := date.Year() - birthdate.Year()
	if years > 0 && date.Before(birthdate.AddDate(years, 0, 0)) {
		years--
	}
	return years
}

// dateToPosition maps a date, already validated to lie within the
// chart's lifespan, onto its grid cell. The start of each row is the
// birthdate's anniversary, so the birthday always lands in week 1.
// A 53rd partial week folds back into column 1 of the same row; the
// leap week visually overlaps week 1 rather than spilling into the
// next row.
func dateToPosition(birthdate, date time.Time) DatePosition {
	year := elapsedYears(birthdate, date)
	startOfYear := birthdate.AddDate(year, 0, 0)
	days := int(date.Sub(startOfYear).Hours() / 24)
	week := days / 7

	x := week%WeeksPerRow + 1

	return DatePosition{
		Point: geometry.Point{X: float64(x), Y: float64(year)},
		Date:  date,
		Week:  x,
		Year:  year,
	}
}
