package date

import (
	"fmt"
	"strings"
	"time"
)

// Period is a standard calendar span used to group or filter readings.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Quarterly
	Yearly
)

func (p Period) String() string {
	switch p {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	default:
		panic(fmt.Sprintf("unknown period %d", int(p)))
	}
}

// ParsePeriod accepts both the adjective and the noun ("weekly", "week").
func ParsePeriod(p string) (Period, error) {
	switch strings.ToLower(p) {
	case "daily", "day":
		return Daily, nil
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	case "quarterly", "quarter":
		return Quarterly, nil
	case "yearly", "year":
		return Yearly, nil
	default:
		return Daily, fmt.Errorf("unknown period %q", p)
	}
}

// StartOf returns the first day of the period containing d.
// Weeks start on Monday.
func (d Date) StartOf(p Period) Date {
	switch p {
	case Daily:
		return d
	case Weekly:
		offset := (int(d.Weekday()) + 6) % 7 // days since Monday
		return d.Add(-offset)
	case Monthly:
		return New(d.y, d.m, 1)
	case Quarterly:
		first := time.Month((int(d.m)-1)/3*3 + 1)
		return New(d.y, first, 1)
	case Yearly:
		return New(d.y, time.January, 1)
	default:
		panic(fmt.Sprintf("unknown period %d", int(p)))
	}
}

// EndOf returns the last day of the period containing d.
func (d Date) EndOf(p Period) Date {
	start := d.StartOf(p)
	switch p {
	case Daily:
		return d
	case Weekly:
		return start.Add(6)
	case Monthly:
		return New(start.y, start.m+1, 0)
	case Quarterly:
		return New(start.y, start.m+3, 0)
	case Yearly:
		return New(start.y, time.December, 31)
	default:
		panic(fmt.Sprintf("unknown period %d", int(p)))
	}
}
