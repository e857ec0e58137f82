package bloodpressure

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// cet is a fixed location used by tests so that local dates do not depend on the machine.
var cet = time.FixedZone("CET", 3600)

// t0 is "now" in tests.
var t0 = time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)

// sequence returns an id generator yielding "id-1", "id-2", ...
func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// fixedClock always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

// newTestLedger returns an empty ledger with deterministic ids, clock and location.
func newTestLedger(t *testing.T) (*Ledger, *MemoryStorage) {
	t.Helper()
	s := new(MemoryStorage)
	l := NewLedger(s, WithIDs(sequence()), WithClock(fixedClock(t0)), WithLocation(cet))
	return l, s
}

// utc is a helper for test to create UTC instants to the minute.
func utc(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

// failingStorage refuses to save.
type failingStorage struct{ MemoryStorage }

var errDiskFull = errors.New("disk full")

func (f *failingStorage) Save([]byte) error { return errDiskFull }
