package bloodpressure

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/etnz/bloodpressure/date"
)

// Reading is one blood pressure and pulse measurement.
type Reading struct {
	ID   string
	Sys  int       // systolic pressure, mmHg
	Dia  int       // diastolic pressure, mmHg
	Puls int       // pulse, beats per minute
	Date time.Time // always UTC
}

// Status returns the tier of the reading.
func (r Reading) Status() Status { return Classify(r.Sys, r.Dia) }

func (r Reading) String() string {
	return fmt.Sprintf("%d/%d mmHg %d BPM on %s", r.Sys, r.Dia, r.Puls, date.FormatInstant(r.Date))
}

// jsonReading is the document form of a Reading. The field order is the key
// order of the document.
type jsonReading struct {
	ID   string `json:"id"`
	Sys  int    `json:"sys"`
	Dia  int    `json:"dia"`
	Puls int    `json:"puls"`
	Date string `json:"date"`
}

func (r Reading) document() jsonReading {
	return jsonReading{
		ID:   r.ID,
		Sys:  r.Sys,
		Dia:  r.Dia,
		Puls: r.Puls,
		Date: date.FormatInstant(r.Date),
	}
}

// MarshalJSON writes the reading in its document form.
func (r Reading) MarshalJSON() ([]byte, error) { return json.Marshal(r.document()) }

var _ json.Marshaler = Reading{}

// Fields are the values of a reading as a person enters them: numbers as
// typed, and a local wall-clock date in [date.LocalFormat].
type Fields struct {
	Sys  string `json:"sys"`
	Dia  string `json:"dia"`
	Puls string `json:"puls"`
	Date string `json:"date"`
}

// FieldsOf returns the fields that would re-create r, its date expressed in loc.
// Edit flows use it to pre-fill the form.
func FieldsOf(r Reading, loc *time.Location) Fields {
	return Fields{
		Sys:  fmt.Sprint(r.Sys),
		Dia:  fmt.Sprint(r.Dia),
		Puls: fmt.Sprint(r.Puls),
		Date: date.FormatLocal(r.Date, loc),
	}
}
