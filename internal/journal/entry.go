package journal

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date form used for Entry.Date.
const DateLayout = "2006-01-02"

// Entry is one completed check-in. Amount > 0 implies Drank.
type Entry struct {
	// ID is set only by remote backends.
	ID      string `json:"id,omitempty"`
	Date    string `json:"date"`
	Drank   bool   `json:"drank"`
	Amount  int    `json:"amount"`
	Feeling Mood   `json:"feeling,omitempty"`
}

// DateOf formats t as a local calendar date.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate reports whether s is a valid YYYY-MM-DD date.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseAmount coerces user or stored input to a drink count. Anything that is
// not a finite non-negative number becomes 0; fractions are truncated.
func ParseAmount(raw string) int {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// UnmarshalJSON decodes an entry without failing on bad field values:
// amount may be a number, a numeric string, null or garbage, an unknown
// feeling reads as unset, and a non-string id or date reads as empty.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      json.RawMessage `json:"id"`
		Date    json.RawMessage `json:"date"`
		Drank   json.RawMessage `json:"drank"`
		Amount  json.RawMessage `json:"amount"`
		Feeling json.RawMessage `json:"feeling"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Entry{ID: decodeString(raw.ID), Date: decodeString(raw.Date)}
	e.Amount = decodeAmount(raw.Amount)

	var drank bool
	if json.Unmarshal(raw.Drank, &drank) == nil {
		e.Drank = drank
	}
	// Older blobs carry no drank flag; derive it from the amount.
	if e.Amount > 0 {
		e.Drank = true
	}

	var label string
	if json.Unmarshal(raw.Feeling, &label) == nil {
		e.Feeling, _ = ParseMood(label)
	}
	return nil
}

func decodeString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func decodeAmount(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return ParseAmount(s)
	}
	return ParseAmount(string(raw))
}
