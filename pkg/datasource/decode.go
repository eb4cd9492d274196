package datasource

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/timeline"
)

// Decode parses data of the given format type ("json", "csv" or "tsv").
// For JSON, property is a dot-separated path to the array of rows.
func Decode(data []byte, typ, property string) ([]timeline.Row, error) {
	switch typ {
	case "", "json":
		return decodeJSON(data, property)
	case "csv":
		return decodeDelimited(data, ',')
	case "tsv":
		return decodeDelimited(data, '\t')
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "data format %q", typ)
}

func decodeJSON(data []byte, property string) ([]timeline.Row, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json rows")
	}
	if property != "" {
		for _, p := range strings.Split(property, ".") {
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "property %q: %q is not an object", property, p)
			}
			v = obj[p]
		}
	}

	items, ok := v.([]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "rows must be an array")
	}
	rows := make([]timeline.Row, len(items))
	for i, item := range items {
		if obj, ok := item.(map[string]any); ok {
			rows[i] = obj
		} else {
			rows[i] = timeline.Row{"data": item}
		}
	}
	return rows, nil
}

func decodeDelimited(data []byte, comma rune) ([]timeline.Row, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header")
	}

	var rows []timeline.Row
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read row %d", len(rows)+1)
		}
		row := make(timeline.Row, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = auto(rec[i])
			} else {
				row[name] = nil
			}
		}
		rows = append(rows, row)
	}
}

// auto converts numeric and boolean cells; everything else stays a string.
func auto(cell string) any {
	switch cell {
	case "":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}
