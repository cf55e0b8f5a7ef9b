package store

import (
	"slices"
	"strings"

	"github.com/i474232898/city-weather/internal/common"
	"github.com/i474232898/city-weather/internal/weather"
)

// CityList is an ordered list of unique (case-insensitive) city names with a selection index.
// It is not safe for concurrent use; the coordinator owns it and serializes access.
type CityList struct {
	names    []string
	selected int
}

// NewCityList creates a list seeded with names. Blank names and case-insensitive
// duplicates are skipped. The first city is selected.
// Without any usable name the list starts with weather.DefaultCities.
func NewCityList(names ...string) *CityList {
	l := &CityList{}
	l.seed(names)
	if len(l.names) == 0 {
		l.seed(weather.DefaultCities)
	}
	return l
}

func (l *CityList) seed(names []string) {
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || l.IndexOf(n) >= 0 {
			continue
		}
		l.names = append(l.names, n)
	}
}

// Add appends name and selects it. It returns the new index.
func (l *CityList) Add(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1, weather.ErrEmptyCityName
	}
	if l.IndexOf(name) >= 0 {
		return -1, weather.ErrDuplicateCity
	}

	l.names = append(l.names, name)
	l.selected = len(l.names) - 1
	return l.selected, nil
}

// Remove deletes the city at index and re-derives the selection.
//
// Removing the selected city selects min(selected, newLen-1) and sets Reselect.
// Removing a city before the selection shifts the selection down by one.
// Removing a city after it leaves the selection alone.
func (l *CityList) Remove(index int) (weather.Removal, error) {
	if len(l.names) <= 1 {
		return weather.Removal{}, weather.ErrLastCityProtected
	}
	if !l.valid(index) {
		return weather.Removal{}, weather.ErrIndexOutOfRange
	}

	name := l.names[index]
	l.names = slices.Delete(l.names, index, index+1)

	r := weather.Removal{Name: name}
	switch {
	case index == l.selected:
		l.selected = min(l.selected, len(l.names)-1)
		r.Reselect = true
	case index < l.selected:
		l.selected--
	}
	r.Selected = l.selected
	return r, nil
}

// Select moves the selection to index.
func (l *CityList) Select(index int) error {
	if !l.valid(index) {
		return weather.ErrIndexOutOfRange
	}
	l.selected = index
	return nil
}

// Get returns the city at index.
func (l *CityList) Get(index int) (string, bool) {
	if !l.valid(index) {
		return "", false
	}
	return l.names[index], true
}

// IndexOf returns the first index whose name matches ignoring case, or -1.
func (l *CityList) IndexOf(name string) int {
	return slices.IndexFunc(l.names, func(n string) bool {
		return common.SameCity(n, name)
	})
}

func (l *CityList) Selected() int   { return l.selected }
func (l *CityList) Len() int        { return len(l.names) }
func (l *CityList) Names() []string { return slices.Clone(l.names) }

func (l *CityList) valid(index int) bool {
	return index >= 0 && index < len(l.names)
}
