package enums

import (
	"fmt"
	"strings"
)

// PickupLocation is the service desk holding a found item.
type PickupLocation string

const (
	PickupLocationSLC PickupLocation = "SLC"
	PickupLocationPAC PickupLocation = "PAC"
	PickupLocationCIF PickupLocation = "CIF"
)

var validPickupLocations = []PickupLocation{
	PickupLocationSLC,
	PickupLocationPAC,
	PickupLocationCIF,
}

var pickupLocationNames = map[PickupLocation]string{
	PickupLocationSLC: "Student Life Centre",
	PickupLocationPAC: "Physical Activities Complex",
	PickupLocationCIF: "Columbia Icefield",
}

// String implements fmt.Stringer.
func (p PickupLocation) String() string {
	return string(p)
}

// DisplayName returns the human readable desk name used in emails.
func (p PickupLocation) DisplayName() string {
	if name, ok := pickupLocationNames[p]; ok {
		return fmt.Sprintf("%s (%s)", name, p)
	}
	return string(p)
}

// IsValid reports whether the value is a known PickupLocation.
func (p PickupLocation) IsValid() bool {
	for _, candidate := range validPickupLocations {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePickupLocation converts raw input into a PickupLocation.
func ParsePickupLocation(value string) (PickupLocation, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validPickupLocations {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pickup location %q", value)
}
