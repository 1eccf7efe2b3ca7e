package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// FloatingLayout is the zone-less wall-clock format catalog lineups use.
const FloatingLayout = "2006-01-02T15:04:05"

var floatingLayouts = []string{FloatingLayout, time.RFC3339Nano, "2006-01-02T15:04"}

// FloatingTime is a local wall-clock time. Catalog data may carry it with or
// without a zone; the wall clock is what gets booked and exported.
type FloatingTime struct {
	time.Time
}

func NewFloatingTime(t time.Time) FloatingTime {
	return FloatingTime{Time: t}
}

// ParseFloatingTime accepts the zone-less layout first, then RFC 3339.
func ParseFloatingTime(s string) (FloatingTime, error) {
	for _, layout := range floatingLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FloatingTime{Time: t}, nil
		}
	}
	return FloatingTime{}, fmt.Errorf("invalid lineup time %q", s)
}

// UnmarshalJSON leaves the value zero for null or "".
func (t *FloatingTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = FloatingTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = FloatingTime{}
		return nil
	}
	parsed, err := ParseFloatingTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON writes the wall clock without a zone.
func (t FloatingTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(FloatingLayout))
}
