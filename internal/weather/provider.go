package weather

import (
	"context"
)

// Fetcher abstracts the weather data source (OpenWeatherMap in production).
// Errors wrap ErrNetwork or ErrParse.
type Fetcher interface {
	Fetch(ctx context.Context, city string) (Record, error)
}

// Cache is the contract the in-memory weather cache must satisfy.
// Keys are normalized by the implementation.
type Cache interface {
	Save(city string, rec Record)
	Get(city string) (Record, bool)
	Delete(city string)
	Snapshot() map[string]Record
}

// Removal describes the outcome of removing a city from a CityList.
type Removal struct {
	Name     string
	Selected int
	// Reselect is true when the removed city was the selected one.
	Reselect bool
}

// CityList is the ordered, case-insensitively unique list of cities plus the selection index.
type CityList interface {
	Add(name string) (int, error)
	Remove(index int) (Removal, error)
	Select(index int) error
	Get(index int) (string, bool)
	IndexOf(name string) int
	Selected() int
	Len() int
	Names() []string
}
