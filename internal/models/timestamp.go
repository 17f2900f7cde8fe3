// internal/models/timestamp.go
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a lenient creation time. RFC 3339, date-only, SQL style and
// unix-second values are accepted; anything else decodes to the zero time,
// which ranking treats as "no timestamp".
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t for an optional timestamp column.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			ts.Time = time.Time{}
			return nil
		}
		ts.Time = parseTimestamp(s)
		return nil
	}
	ts.Time = parseTimestamp(string(data))
	return nil
}

func (ts *Timestamp) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		ts.Time = time.Time{}
		return nil
	}
	ts.Time = parseTimestamp(value.Value)
	return nil
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0).UTC()
	}
	return time.Time{}
}
