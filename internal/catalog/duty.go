package catalog

import (
	"fmt"
	"strings"
)

// DutyType identifies one of the five weekly rotating duties.
type DutyType string

const (
	DutyFin          DutyType = "fin"
	DutyAsana        DutyType = "asana"
	DutyTG           DutyType = "tg"
	DutyNotification DutyType = "notification"
	DutySupervision  DutyType = "supervision"
)

// DutyTypes lists every duty type in presentation order.
func DutyTypes() []DutyType {
	return []DutyType{DutyFin, DutyAsana, DutyTG, DutyNotification, DutySupervision}
}

// ParseDutyType resolves a user-supplied duty token.
func ParseDutyType(s string) (DutyType, error) {
	switch DutyType(strings.ToLower(strings.TrimSpace(s))) {
	case DutyFin:
		return DutyFin, nil
	case DutyAsana:
		return DutyAsana, nil
	case DutyTG:
		return DutyTG, nil
	case DutyNotification:
		return DutyNotification, nil
	case DutySupervision:
		return DutySupervision, nil
	default:
		return "", fmt.Errorf("catalog: unknown duty type %q", s)
	}
}

// Label returns the duty task name used in the task base and in messages.
func (d DutyType) Label() string {
	return strings.ToUpper(string(d)) + "-DUTY"
}
