package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
// It serialises as "HH:MM" in JSON and in the database. The value 24:00
// marks the end of the operational day and is valid only as an end time.
type TimeOfDay int

// MinutesPerDay bounds the operational day.
const MinutesPerDay = 24 * 60

// ParseTimeOfDay parses an "HH:MM" string. The whole input must match:
// trailing seconds or other garbage is rejected.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	if len(raw) != 5 || raw[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", raw)
	}
	for _, i := range [4]int{0, 1, 3, 4} {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, fmt.Errorf("invalid time %q: expected HH:MM", raw)
		}
	}
	hours := int(raw[0]-'0')*10 + int(raw[1]-'0')
	minutes := int(raw[3]-'0')*10 + int(raw[4]-'0')
	if hours > 24 || minutes > 59 || (hours == 24 && minutes != 0) {
		return 0, fmt.Errorf("invalid time %q: out of range", raw)
	}
	return TimeOfDay(hours*60 + minutes), nil
}

// String renders the canonical "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// AddHours shifts the time forward; results past 24:00 are reported by Valid.
func (t TimeOfDay) AddHours(hours int) TimeOfDay {
	return t + TimeOfDay(hours*60)
}

// Valid reports whether the time falls within a single operational day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= MinutesPerDay
}

// MarshalJSON implements json.Marshaler.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer, storing the canonical string form.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner for text and time columns.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		if len(v) > 5 {
			v = v[:5] // tolerate HH:MM:SS from time columns
		}
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		return t.Scan(string(v))
	case time.Time:
		*t = TimeOfDay(v.Hour()*60 + v.Minute())
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}
