package bloodpressure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/bloodpressure/date"
)

// this file contains functions to handle the import/export of the document format.

// ImportOption configures an import.
type ImportOption func(*importConfig)

type importConfig struct {
	selector string
}

// WithSelector imports the list found at a JSONPath expression, e.g.
// "$.entries", instead of the document root. It helps importing files written
// by other tools that wrap the list in an object.
func WithSelector(path string) ImportOption {
	return func(c *importConfig) { c.selector = path }
}

// Import merges the readings of a document into the ledger and returns how
// many were accepted.
//
// A document that is not valid JSON is a *ParseError and leaves the ledger
// untouched. A document that is not a list imports nothing and is not an
// error. Records that fail validation are skipped. Accepted records keep their
// own id unless it is missing or already used, get "now" when they have no
// date, and are never deduplicated: importing a file twice duplicates its
// readings. The merged ledger is re-sorted most recent first and saved once.
func (l *Ledger) Import(raw []byte, opts ...ImportOption) (int, error) {
	var cfg importConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	doc, err := parseDocument(raw)
	if err != nil {
		return 0, err
	}
	if cfg.selector != "" {
		if doc, err = selectList(cfg.selector, doc); err != nil {
			return 0, err
		}
	}
	items, ok := doc.([]any)
	if !ok {
		log.Printf("import-readings skipped document=%q", kindOf(doc))
		return 0, nil
	}

	now := l.now()
	taken := l.ids()
	accepted := make([]Reading, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		r, err := ValidateCandidate(obj, now, l.loc)
		if err != nil {
			continue
		}
		if _, dup := taken[r.ID]; r.ID == "" || dup {
			id := l.freshID(taken)
			if r.ID != "" {
				log.Printf("reassign-reading-id old=%q new=%q", r.ID, id)
			}
			r.ID = id
		}
		taken[r.ID] = struct{}{}
		accepted = append(accepted, r)
	}

	l.readings = append(accepted, l.readings...)
	sortDescending(l.readings)
	log.Printf("import-readings accepted=%d dropped=%d", len(accepted), len(items)-len(accepted))
	l.save()
	return len(accepted), nil
}

// ImportFrom reads the whole document from r before importing it, so that the
// ledger is only touched once the text is complete.
func (l *Ledger) ImportFrom(r io.Reader, opts ...ImportOption) (int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("could not read document: %w", err)
	}
	return l.Import(raw, opts...)
}

// selectList evaluates a JSONPath expression on doc. An invalid expression is
// a *ParseError; an expression that matches nothing gives nil, which imports
// nothing.
func selectList(path string, doc any) (any, error) {
	eval, err := jsonpath.New(path)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("invalid selector %q: %w", path, err)}
	}
	v, err := eval(context.Background(), doc)
	if err != nil {
		log.Printf("import-readings selector=%q err=%v", path, err)
		return nil, nil
	}
	return v, nil
}

// Export returns the document of all readings, most recent first.
func (l *Ledger) Export() []byte {
	var buf bytes.Buffer
	// Writing to a bytes.Buffer cannot fail, and readings always marshal.
	_ = EncodeDocument(&buf, l.List())
	return buf.Bytes()
}

// ExportFileName is the suggested file name of an export made on day.
func ExportFileName(day date.Date) string {
	return fmt.Sprintf("blutdruck_daten_%s.json", day)
}
