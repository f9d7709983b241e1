package models

import (
	"fmt"
	"strings"
)

// DayOfWeek is one of the seven fixed weekday values used by schedules.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

var dayValues = map[DayOfWeek]struct{}{
	Monday:    {},
	Tuesday:   {},
	Wednesday: {},
	Thursday:  {},
	Friday:    {},
	Saturday:  {},
	Sunday:    {},
}

// ParseDayOfWeek normalises a raw day label, rejecting anything outside the enumeration.
func ParseDayOfWeek(raw string) (DayOfWeek, error) {
	day := DayOfWeek(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := dayValues[day]; !ok {
		return "", fmt.Errorf("invalid day of week %q", raw)
	}
	return day, nil
}

// Valid reports whether the value is one of the seven weekdays.
func (d DayOfWeek) Valid() bool {
	_, ok := dayValues[d]
	return ok
}
