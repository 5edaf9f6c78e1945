package booking

import "fmt"

// Location is a camping site category. "Private Events" appears on
// legacy records and in admin filters but is not offered through the
// public booking flow.
type Location string

const (
	LocationDesert        Location = "Desert"
	LocationMountain      Location = "Mountain"
	LocationWadi          Location = "Wadi"
	LocationPrivateEvents Location = "Private Events"
)

// IsValid returns true for any recognized location value.
func (l Location) IsValid() bool {
	switch l {
	case LocationDesert, LocationMountain, LocationWadi, LocationPrivateEvents:
		return true
	}
	return false
}

// IsBookable returns true for locations offered on the public form.
func (l Location) IsBookable() bool {
	switch l {
	case LocationDesert, LocationMountain, LocationWadi:
		return true
	}
	return false
}

// String returns the string representation of the location.
func (l Location) String() string {
	return string(l)
}

// BookableLocations lists the locations selectable on the public form.
func BookableLocations() []Location {
	return []Location{LocationDesert, LocationMountain, LocationWadi}
}

// ParseLocation converts a string to a Location, returning an error if
// the value is not recognized.
func ParseLocation(s string) (Location, error) {
	loc := Location(s)
	if !loc.IsValid() {
		return "", fmt.Errorf("invalid location: %s", s)
	}
	return loc, nil
}
