package renderer

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/etnz/bloodpressure"
	"github.com/etnz/bloodpressure/date"
	md "github.com/nao1215/markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ProtocolTitle is the title of a printed protocol.
const ProtocolTitle = "Blood pressure log"

// Protocol is a printable list of readings, meant to be handed to a doctor.
type Protocol struct {
	Printed  date.Date
	Range    *date.Range // nil when every reading is printed
	Readings []bloodpressure.Reading
	Location *time.Location
}

// ProtocolMarkdown renders the protocol as markdown.
func ProtocolMarkdown(p *Protocol) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(ProtocolTitle)
	doc.PlainText(fmt.Sprintf("Printed on %s.", p.Printed))
	if p.Range != nil {
		doc.PlainText(fmt.Sprintf("Readings from %s to %s (%s).", p.Range.From, p.Range.To, p.Range.Identifier()))
	}

	doc.PlainText("")
	if len(p.Readings) == 0 {
		doc.PlainText("No readings.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Date", "Blood pressure", "Pulse", "Status"},
		Rows:   [][]string{},
	}
	for _, r := range p.Readings {
		status := r.Status().String()
		if r.Status() == bloodpressure.High {
			status = md.Bold(status)
		}
		table.Rows = append(table.Rows, []string{
			r.Date.In(location(p.Location)).Format(ShortDateFormat),
			pressure(r) + " mmHg",
			fmt.Sprintf("%d BPM", r.Puls),
			status,
		})
	}
	doc.Table(table)
	return doc.String()
}

// ProtocolHTML renders the protocol as a standalone HTML page, ready to print
// from a browser.
func ProtocolHTML(p *Protocol) (string, error) {
	var body bytes.Buffer
	conv := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := conv.Convert([]byte(ProtocolMarkdown(p)), &body); err != nil {
		return "", fmt.Errorf("could not render protocol: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s %s</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%%; }
th, td { border-bottom: 1px solid #ccc; padding: 0.3em 0.6em; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
`, html.EscapeString(ProtocolTitle), p.Printed)
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
