package weather

import (
	"fmt"
	"math"

	"github.com/i474232898/city-weather/internal/common"
)

const absoluteZeroC = 273.15

// CelsiusValue converts a Kelvin temperature to whole degrees Celsius.
func CelsiusValue(kelvin float64) int {
	return int(math.Round(kelvin - absoluteZeroC))
}

// FahrenheitValue converts a Kelvin temperature to whole degrees Fahrenheit.
func FahrenheitValue(kelvin float64) int {
	return int(math.Round((kelvin-absoluteZeroC)*9/5 + 32))
}

func (r Record) TemperatureCelsius() string    { return fmt.Sprintf("%d°C", CelsiusValue(r.TemperatureKelvin)) }
func (r Record) TemperatureFahrenheit() string { return fmt.Sprintf("%d°F", FahrenheitValue(r.TemperatureKelvin)) }
func (r Record) FeelsLikeCelsius() string      { return fmt.Sprintf("%d°C", CelsiusValue(r.FeelsLikeKelvin)) }
func (r Record) FeelsLikeFahrenheit() string   { return fmt.Sprintf("%d°F", FahrenheitValue(r.FeelsLikeKelvin)) }

// Temperature formats the temperature in the requested unit.
func (r Record) Temperature(celsius bool) string {
	if celsius {
		return r.TemperatureCelsius()
	}
	return r.TemperatureFahrenheit()
}

// FeelsLike formats the feels-like temperature in the requested unit.
func (r Record) FeelsLike(celsius bool) string {
	if celsius {
		return r.FeelsLikeCelsius()
	}
	return r.FeelsLikeFahrenheit()
}

// WindDirection returns the 8-point compass label for the record's wind degree.
func (r Record) WindDirection() string {
	return CompassPoint(r.WindDegree)
}

// CompassPoint buckets a degree in [0,360] into one of 8 compass points.
// Boundaries are inclusive on whole degrees; anything outside [0,360] is "N/A".
func CompassPoint(deg int) string {
	switch {
	case deg < 0 || deg > 360:
		return "N/A"
	case deg <= 22:
		return "N"
	case deg <= 67:
		return "NE"
	case deg <= 112:
		return "E"
	case deg <= 157:
		return "SE"
	case deg <= 202:
		return "S"
	case deg <= 247:
		return "SW"
	case deg <= 292:
		return "W"
	case deg <= 337:
		return "NW"
	default:
		return "N"
	}
}

// DescriptionCapitalized returns the description with its first character upper-cased.
func (r Record) DescriptionCapitalized() string {
	return common.CapitalizeFirst(r.Description)
}

var beaufortScale = []struct {
	below float64
	label string
}{
	{0.3, "calm"},
	{1.6, "light air"},
	{3.4, "light breeze"},
	{5.5, "gentle breeze"},
	{8.0, "moderate breeze"},
	{10.8, "fresh breeze"},
	{13.9, "strong breeze"},
	{17.2, "near gale"},
	{20.8, "gale"},
	{24.5, "strong gale"},
	{28.5, "storm"},
	{32.7, "violent storm"},
}

// Beaufort returns the Beaufort number (0-12) and its descriptor for a wind speed in m/s.
func Beaufort(speedMs float64) (int, string) {
	for i, band := range beaufortScale {
		if speedMs < band.below {
			return i, band.label
		}
	}
	return len(beaufortScale), "hurricane"
}

// BeaufortDescriptor returns the qualitative wind-strength label for the record.
func (r Record) BeaufortDescriptor() string {
	_, label := Beaufort(r.WindSpeedMs)
	return label
}

func (r Record) HumidityText() string  { return fmt.Sprintf("%d%%", r.HumidityPercent) }
func (r Record) PressureText() string  { return fmt.Sprintf("%d hPa", r.PressureHpa) }
func (r Record) WindSpeedText() string { return fmt.Sprintf("%.1f m/s", r.WindSpeedMs) }
func (r Record) CloudsText() string    { return fmt.Sprintf("%d%%", r.CloudsPercent) }

// IconURL points at the provider-hosted icon image.
func (r Record) IconURL() string {
	if r.Icon == "" {
		return ""
	}
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", r.Icon)
}

// CityView is the presentation-ready form of one list row.
type CityView struct {
	Name          string    `json:"name"`
	Loaded        bool      `json:"loaded"`
	Description   string    `json:"description"`
	Temperature   string    `json:"temperature"`
	FeelsLike     string    `json:"feelsLike"`
	Humidity      string    `json:"humidity"`
	Pressure      string    `json:"pressure"`
	WindSpeed     string    `json:"windSpeed"`
	WindDirection string    `json:"windDirection,omitempty"`
	Beaufort      string    `json:"beaufort"`
	Clouds        string    `json:"clouds"`
	Icon          string    `json:"icon"`
	IconURL       string    `json:"iconUrl"`
	Condition     Condition `json:"condition"`
}

// Present builds the view for the city called name. A nil record renders placeholders.
func Present(name string, rec *Record, prefs Preferences) CityView {
	if rec == nil {
		v := CityView{
			Name:        name,
			Description: "Loading...",
			Temperature: "--°",
			Humidity:    "--%",
			Pressure:    "-- hPa",
			WindSpeed:   "-- m/s",
			Beaufort:    "--",
			Clouds:      "--%",
			Condition:   ConditionUnknown,
		}
		if prefs.ShowWindDirection {
			v.WindDirection = "--"
		}
		return v
	}

	displayName := rec.City
	if displayName == "" {
		displayName = name
	}

	v := CityView{
		Name:        displayName,
		Loaded:      true,
		Description: rec.DescriptionCapitalized(),
		Temperature: rec.Temperature(prefs.Celsius),
		FeelsLike:   rec.FeelsLike(prefs.Celsius),
		Humidity:    rec.HumidityText(),
		Pressure:    rec.PressureText(),
		WindSpeed:   rec.WindSpeedText(),
		Beaufort:    rec.BeaufortDescriptor(),
		Clouds:      rec.CloudsText(),
		Icon:        rec.Icon,
		IconURL:     rec.IconURL(),
		Condition:   rec.Condition(),
	}
	if prefs.ShowWindDirection {
		v.WindDirection = rec.WindDirection()
	}
	return v
}
