package bloodpressure

import (
	"bytes"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Ledger holds every reading of the device.
//
// The stored order is the order readings are persisted in: a new reading is
// inserted at the head, an edited one keeps its position and an import
// re-sorts everything. List always returns readings most recent first.
//
// Every mutating method writes the full ledger to its Storage exactly once.
// A Ledger is not safe for concurrent use.
type Ledger struct {
	readings []Reading
	storage  Storage
	now      func() time.Time
	newID    func() string
	loc      *time.Location
	saveErr  error
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the source of "now", used for import candidates without a date.
func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

// WithIDs sets the generator of fresh reading ids.
func WithIDs(newID func() string) Option { return func(l *Ledger) { l.newID = newID } }

// WithLocation sets the location wall-clock dates are entered in.
func WithLocation(loc *time.Location) Option { return func(l *Ledger) { l.loc = loc } }

// NewID returns a fresh time-ordered UUID.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewLedger creates an empty ledger mirrored to s. A nil s keeps the ledger in memory.
func NewLedger(s Storage, opts ...Option) *Ledger {
	if s == nil {
		s = new(MemoryStorage)
	}
	l := &Ledger{
		readings: make([]Reading, 0),
		storage:  s,
		now:      time.Now,
		newID:    NewID,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open loads the ledger persisted in s. An empty storage gives an empty ledger.
func Open(s Storage, opts ...Option) (*Ledger, error) {
	l := NewLedger(s, opts...)
	data, err := l.storage.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load ledger: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return l, nil
	}
	readings, err := DecodeDocument(data, l.loc)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger: %w", err)
	}

	// Hand-edited files may repeat ids, the ledger never does.
	taken := make(map[string]struct{}, len(readings))
	for i, r := range readings {
		if _, dup := taken[r.ID]; dup {
			readings[i].ID = l.freshID(taken)
			log.Printf("reassign-reading-id old=%q new=%q", r.ID, readings[i].ID)
		}
		taken[readings[i].ID] = struct{}{}
	}
	l.readings = readings
	return l, nil
}

// Location returns the location wall-clock dates are read in.
func (l *Ledger) Location() *time.Location { return l.loc }

// Now returns the current instant of the ledger clock.
func (l *Ledger) Now() time.Time { return l.now() }

// Len returns the number of readings.
func (l *Ledger) Len() int { return len(l.readings) }

// SaveErr returns the error of the last write to storage, nil if it succeeded.
// Failed writes are not fatal: the in-memory ledger remains the reference for
// the rest of the session, and the next mutation writes it in full again.
func (l *Ledger) SaveErr() error { return l.saveErr }

// Get returns the reading with this id.
func (l *Ledger) Get(id string) (Reading, bool) {
	i := l.index(id)
	if i < 0 {
		return Reading{}, false
	}
	return l.readings[i], true
}

// List returns a copy of all readings, most recent first. Readings with the
// same date keep their stored order.
func (l *Ledger) List() []Reading {
	readings := slices.Clone(l.readings)
	if readings == nil {
		readings = make([]Reading, 0)
	}
	sortDescending(readings)
	return readings
}

// Create validates f, stores a new reading at the head of the ledger and returns it.
func (l *Ledger) Create(f Fields) (Reading, error) {
	r, err := f.Validate(l.loc)
	if err != nil {
		return Reading{}, err
	}
	r.ID = l.freshID(l.ids())
	l.readings = slices.Insert(l.readings, 0, r)
	log.Printf("append-reading id=%q", r.ID)
	l.save()
	return r, nil
}

// Update replaces every field of the reading id with f. The reading keeps its id.
func (l *Ledger) Update(id string, f Fields) (Reading, error) {
	r, err := f.Validate(l.loc)
	if err != nil {
		return Reading{}, err
	}
	i := l.index(id)
	if i < 0 {
		return Reading{}, &NotFoundError{ID: id}
	}
	r.ID = id
	l.readings[i] = r
	log.Printf("update-reading id=%q", id)
	l.save()
	return r, nil
}

// Delete removes the reading id. Deleting an unknown id is not an error, so
// that deleting twice is the same as deleting once.
func (l *Ledger) Delete(id string) {
	l.readings = slices.DeleteFunc(l.readings, func(r Reading) bool { return r.ID == id })
	log.Printf("delete-reading id=%q", id)
	l.save()
}

func (l *Ledger) index(id string) int {
	return slices.IndexFunc(l.readings, func(r Reading) bool { return r.ID == id })
}

func (l *Ledger) ids() map[string]struct{} {
	taken := make(map[string]struct{}, len(l.readings))
	for _, r := range l.readings {
		taken[r.ID] = struct{}{}
	}
	return taken
}

// freshID returns a new id that is not in taken.
func (l *Ledger) freshID(taken map[string]struct{}) string {
	for {
		id := l.newID()
		if _, dup := taken[id]; id != "" && !dup {
			return id
		}
	}
}

// save writes the full ledger to storage.
func (l *Ledger) save() {
	var buf bytes.Buffer
	err := EncodeDocument(&buf, l.readings)
	if err == nil {
		err = l.storage.Save(buf.Bytes())
	}
	if err != nil {
		l.saveErr = fmt.Errorf("could not save ledger: %w", err)
		log.Printf("save-ledger-failed err=%v", err)
		return
	}
	l.saveErr = nil
}

// sortDescending sorts readings most recent first; the sort is stable.
func sortDescending(readings []Reading) {
	slices.SortStableFunc(readings, func(a, b Reading) int { return b.Date.Compare(a.Date) })
}
