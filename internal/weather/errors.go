package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork covers transport failures, an open circuit and non-2xx provider responses.
	ErrNetwork = errors.New("network error")
	// ErrParse is returned for malformed or schema-mismatched provider payloads.
	ErrParse = errors.New("parse error")

	ErrDuplicateCity     = errors.New("city already in list")
	ErrLastCityProtected = errors.New("cannot remove the last city")
	ErrIndexOutOfRange   = errors.New("city index out of range")
	ErrEmptyCityName     = errors.New("city name is empty")
)

// User-visible messages published on the coordinator's error slot.
const (
	msgDuplicateCity = "City already in list"
	msgLastCity      = "Cannot remove the last city"
)

func loadFailedMessage(city string) string {
	return fmt.Sprintf("Failed to load data for \"%s\"", city)
}
