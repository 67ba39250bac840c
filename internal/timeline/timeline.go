// Package timeline projects history entries into rows for a history panel.
//
// Rows carry no snapshot data, only what a panel lists: position, label,
// time and whether the entry is current. They can be rendered as text or
// encoded as JSON or CBOR for a remote panel.
package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fxamacker/cbor/v2"

	"github.com/dshills/blockforge/internal/engine/history"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// Formats returns the supported output formats.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatCBOR}
}

// ErrUnknownFormat is returned by Write for unsupported formats.
var ErrUnknownFormat = errors.New("unknown timeline format")

// Row is one line of a history panel.
type Row struct {
	Index   int       `json:"index" cbor:"index"`
	ID      string    `json:"id" cbor:"id"`
	Action  string    `json:"action" cbor:"action"`
	Time    time.Time `json:"time" cbor:"time"`
	Ago     string    `json:"ago" cbor:"ago"`
	Current bool      `json:"current" cbor:"current"`
}

// Build projects entries into rows. Ago is relative to now.
func Build[T any](entries []history.EntryView[T], now time.Time) []Row {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{
			Index:   e.Index,
			ID:      e.ID,
			Action:  e.Action,
			Time:    e.Timestamp,
			Ago:     humanize.RelTime(e.Timestamp, now, "ago", "from now"),
			Current: e.IsCurrent,
		}
	}
	return rows
}

// Render writes rows as an aligned text table, marking the current entry.
func Render(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		marker := " "
		if r.Current {
			marker = ">"
		}
		if _, err := fmt.Fprintf(tw, "%s %d\t%s\t%s\n", marker, r.Index, r.Action, r.Ago); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// EncodeJSON writes rows as a JSON array.
func EncodeJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

var cborMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// EncodeCBOR writes rows as a CBOR array. Times are RFC 3339 strings.
func EncodeCBOR(w io.Writer, rows []Row) error {
	data, err := cborMode.Marshal(rows)
	if err != nil {
		return fmt.Errorf("cbor marshal: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// DecodeCBOR decodes rows produced by EncodeCBOR.
func DecodeCBOR(data []byte) ([]Row, error) {
	var rows []Row
	if err := cbor.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("cbor unmarshal: %w", err)
	}
	return rows, nil
}

// Write encodes rows in format.
func Write(w io.Writer, format string, rows []Row) error {
	switch format {
	case FormatText, "":
		return Render(w, rows)
	case FormatJSON:
		return EncodeJSON(w, rows)
	case FormatCBOR:
		return EncodeCBOR(w, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
