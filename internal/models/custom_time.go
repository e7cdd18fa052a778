package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the wire format for trade and settle dates
const DateLayout = "2006-01-02"

// FlexibleDate is a custom time type that can unmarshal both RFC3339 and "YYYY-MM-DD" formats
type FlexibleDate struct {
	time.Time
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexibleDate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		f.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		f.Time = t
		return nil
	}

	t, err = time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	f.Time = t
	return nil
}

// MarshalJSON writes a bare date when there is no time-of-day component.
func (f FlexibleDate) MarshalJSON() ([]byte, error) {
	h, m, s := f.Clock()
	if h == 0 && m == 0 && s == 0 && f.Nanosecond() == 0 {
		return json.Marshal(f.Format(DateLayout))
	}
	return json.Marshal(f.Time)
}

// Or returns the date, or def when f is nil or unset.
func (f *FlexibleDate) Or(def time.Time) time.Time {
	if f == nil || f.IsZero() {
		return def
	}
	return f.Time
}
