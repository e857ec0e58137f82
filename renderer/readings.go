package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/etnz/bloodpressure"
	md "github.com/nao1215/markdown"
)

// ShortDateFormat is how reading dates are shown: day and month then local time.
const ShortDateFormat = "02.01. 15:04"

// ReadingsMarkdown renders readings as a table, one row per reading, with the
// id needed to edit or delete it. Dates are shown in loc.
func ReadingsMarkdown(readings []bloodpressure.Reading, loc *time.Location) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	if len(readings) == 0 {
		doc.PlainText("No readings.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"ID", "Date", "mmHg", "BPM", "Status"},
		Rows:   [][]string{},
	}
	for _, r := range readings {
		table.Rows = append(table.Rows, []string{
			r.ID,
			r.Date.In(location(loc)).Format("2006-01-02 15:04"),
			pressure(r),
			fmt.Sprint(r.Puls),
			r.Status().String(),
		})
	}
	doc.Table(table)
	return doc.String()
}

func pressure(r bloodpressure.Reading) string { return fmt.Sprintf("%d/%d", r.Sys, r.Dia) }

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
