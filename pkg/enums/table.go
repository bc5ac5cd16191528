package enums

import "fmt"

// TableZone groups venue tables by service area.
type TableZone string

const (
	TableZoneVIP     TableZone = "vip"
	TableZoneRegular TableZone = "regular"
	TableZoneOutdoor TableZone = "outdoor"
)

var validTableZones = []TableZone{
	TableZoneVIP,
	TableZoneRegular,
	TableZoneOutdoor,
}

// IsValid reports whether the value is a known TableZone.
func (z TableZone) IsValid() bool {
	for _, candidate := range validTableZones {
		if candidate == z {
			return true
		}
	}
	return false
}

// ParseTableZone converts raw input into a TableZone.
func ParseTableZone(value string) (TableZone, error) {
	for _, candidate := range validTableZones {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid table zone %q", value)
}

// TableStatus is the occupancy state of a venue table.
type TableStatus string

const (
	TableStatusIdle            TableStatus = "idle"
	TableStatusOccupied        TableStatus = "occupied"
	TableStatusServiceRequired TableStatus = "service_required"
)

var validTableStatuses = []TableStatus{
	TableStatusIdle,
	TableStatusOccupied,
	TableStatusServiceRequired,
}

// IsValid reports whether the value is a known TableStatus.
func (s TableStatus) IsValid() bool {
	for _, candidate := range validTableStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTableStatus converts raw input into a TableStatus.
func ParseTableStatus(value string) (TableStatus, error) {
	for _, candidate := range validTableStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid table status %q", value)
}
