package bloodpressure

import "fmt"

// Status is the tier of a reading, derived from its systolic and diastolic values.
type Status int

const (
	// Normal means systolic at most 120 and diastolic at most 80.
	Normal Status = iota
	// Elevated means systolic above 120 or diastolic above 80, and not High.
	Elevated
	// High means systolic above 140 or diastolic above 90.
	High
)

func (s Status) String() string {
	switch s {
	case Normal:
		return "normal"
	case Elevated:
		return "elevated"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "normal":
		return Normal, nil
	case "elevated":
		return Elevated, nil
	case "high":
		return High, nil
	default:
		return 0, fmt.Errorf("unknown status: %q", s)
	}
}

// Classify returns the tier of a systolic/diastolic pair. Boundaries are
// exclusive: 120/80 is Normal and 140/90 is Elevated.
func Classify(sys, dia int) Status {
	switch {
	case sys > 140 || dia > 90:
		return High
	case sys > 120 || dia > 80:
		return Elevated
	default:
		return Normal
	}
}
