package cmd

import (
	"flag"
	"fmt"
	"time"

	"github.com/etnz/bloodpressure/date"
)

// rangeFlags selects the days of readings to show.
type rangeFlags struct {
	period string
	date   string
	start  string
}

func (c *rangeFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "", "Period to show: day, week, month, quarter or year")
	f.StringVar(&c.date, "d", "", "Reference day of the period, like 2024-01-31. Defaults to today.")
	f.StringVar(&c.start, "s", "", "First day to show, up to the reference day. Overrides -p.")
}

// resolve returns the selected range, nil when no flag selects one.
func (c *rangeFlags) resolve(loc *time.Location) (*date.Range, error) {
	if c.period == "" && c.date == "" && c.start == "" {
		return nil, nil
	}

	end := today(loc)
	if c.date != "" {
		d, err := date.Parse(c.date)
		if err != nil {
			return nil, fmt.Errorf("parsing reference day: %w", err)
		}
		end = d
	}

	if c.start != "" {
		start, err := date.Parse(c.start)
		if err != nil {
			return nil, fmt.Errorf("parsing start day: %w", err)
		}
		if start.After(end) {
			return nil, fmt.Errorf("start day %s is after %s", start, end)
		}
		return &date.Range{From: start, To: end}, nil
	}

	p := date.Daily
	if c.period != "" {
		var err error
		if p, err = date.ParsePeriod(c.period); err != nil {
			return nil, fmt.Errorf("parsing period: %w", err)
		}
	}
	rng := date.NewRange(end, p)
	return &rng, nil
}
