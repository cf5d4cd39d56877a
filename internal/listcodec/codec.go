package listcodec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sharext-labs/sharext/internal/extension"
)

// wireRecord is the persisted shape of a record. Installed and Downloads are
// runtime-only and have no field here.
type wireRecord struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Author          string `json:"author"`
	Description     string `json:"description"`
	IconSource      string `json:"iconSource,omitempty"`
	MarketplaceLink string `json:"marketplaceLink"`
}

// legacyRecord carries keys written by older exporters.
type legacyRecord struct {
	IconSrc string `json:"iconSrc"`
}

// Decoded is the result of decoding a list document.
type Decoded struct {
	// Records holds every valid element, sorted by name.
	Records []extension.Record
	// Malformed holds one entry per element that was skipped.
	Malformed []*MalformedRecordError
}

// Err joins all malformed-record errors, or returns nil when there are none.
func (d *Decoded) Err() error {
	if len(d.Malformed) == 0 {
		return nil
	}
	errs := make([]error, len(d.Malformed))
	for i, m := range d.Malformed {
		errs[i] = m
	}
	return errors.Join(errs...)
}

// Encode serializes records as an indented JSON array. The record order is
// preserved.
func Encode(records []extension.Record) ([]byte, error) {
	wire := make([]wireRecord, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("encoding record %d (%q): id is required", i, r.Name)
		}
		wire[i] = wireRecord{
			ID:              r.ID,
			Name:            r.Name,
			Author:          r.Author,
			Description:     r.Description,
			IconSource:      r.IconSource,
			MarketplaceLink: r.MarketplaceLink(),
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(wire); err != nil {
		return nil, fmt.Errorf("encoding list: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a list document. Elements that fail validation are reported
// in Decoded.Malformed and skipped; the returned error is reserved for
// documents that cannot be read as a list at all.
func Decode(data []byte) (*Decoded, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrNotAList
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotAList
		}
		return nil, fmt.Errorf("parsing list: %w", err)
	}

	decoded := &Decoded{Records: make([]extension.Record, 0, len(elements))}
	for i, raw := range elements {
		issues, err := validateRecord(raw)
		if err != nil {
			return nil, err
		}
		if len(issues) > 0 {
			decoded.Malformed = append(decoded.Malformed, &MalformedRecordError{
				Index:  i,
				ID:     peekID(raw),
				Issues: issues,
			})
			continue
		}

		r, err := decodeRecord(raw)
		if err != nil {
			decoded.Malformed = append(decoded.Malformed, &MalformedRecordError{
				Index:  i,
				Issues: []Issue{{Message: err.Error()}},
			})
			continue
		}
		decoded.Records = append(decoded.Records, r)
	}

	extension.SortByName(decoded.Records)
	return decoded, nil
}

func decodeRecord(raw []byte) (extension.Record, error) {
	var w wireRecord
	if err := json.Unmarshal(raw, &w); err != nil {
		return extension.Record{}, err
	}

	icon := w.IconSource
	if icon == "" {
		var legacy legacyRecord
		if err := json.Unmarshal(raw, &legacy); err == nil {
			icon = legacy.IconSrc
		}
	}

	return extension.Record{
		ID:          w.ID,
		Name:        w.Name,
		Author:      w.Author,
		Description: w.Description,
		IconSource:  icon,
	}, nil
}

// peekID extracts a string id from a malformed element, if it has one.
func peekID(raw []byte) string {
	var probe struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	id, _ := probe.ID.(string)
	return id
}
