package weather

import (
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition derived from the provider icon code.
type Condition string

const (
	ConditionUnknown      Condition = "unknown"
	ConditionClear        Condition = "clear"
	ConditionPartlyCloudy Condition = "partly_cloudy"
	ConditionCloudy       Condition = "cloudy"
	ConditionRain         Condition = "rain"
	ConditionSnow         Condition = "snow"
	ConditionStorm        Condition = "storm"
	ConditionMist         Condition = "mist"
)

// Record is a single weather snapshot for one city at one point in time.
// Numeric fields keep the provider's raw units: Kelvin, hPa, m/s and degrees.
// Records are values; a new fetch produces a new Record instead of mutating one.
type Record struct {
	City              string    `json:"city"`
	TemperatureKelvin float64   `json:"temperatureKelvin"`
	FeelsLikeKelvin   float64   `json:"feelsLikeKelvin"`
	Description       string    `json:"description"`
	HumidityPercent   int       `json:"humidityPercent"`
	PressureHpa       int       `json:"pressureHpa"`
	WindSpeedMs       float64   `json:"windSpeedMs"`
	WindDegree        int       `json:"windDegree"`
	Icon              string    `json:"icon"`
	CloudsPercent     int       `json:"cloudsPercent"`
	FetchedAt         time.Time `json:"fetchedAt"` // always UTC
}

// Condition maps the OpenWeatherMap icon code onto a Condition.
func (r Record) Condition() Condition {
	icon := r.Icon
	switch {
	case strings.HasPrefix(icon, "01"):
		return ConditionClear
	case strings.HasPrefix(icon, "02"):
		return ConditionPartlyCloudy
	case strings.HasPrefix(icon, "03"), strings.HasPrefix(icon, "04"):
		return ConditionCloudy
	case strings.HasPrefix(icon, "09"), strings.HasPrefix(icon, "10"):
		return ConditionRain
	case strings.HasPrefix(icon, "11"):
		return ConditionStorm
	case strings.HasPrefix(icon, "13"):
		return ConditionSnow
	case strings.HasPrefix(icon, "50"):
		return ConditionMist
	default:
		return ConditionUnknown
	}
}

// Daytime reports whether the icon is a day variant ("01d" vs "01n").
func (r Record) Daytime() bool {
	return !strings.HasSuffix(r.Icon, "n")
}

// WeatherUpdate is emitted when a fetch for the city at Position completed successfully.
type WeatherUpdate struct {
	Position  int    `json:"position"`
	City      string `json:"city"`
	Record    Record `json:"record"`
	RequestID string `json:"requestId"`
}

// Preferences controls how records are presented. Changing them never triggers a fetch.
type Preferences struct {
	Celsius           bool `json:"celsius"`
	ShowWindDirection bool `json:"showWindDirection"`
}

// DefaultCities is the list a coordinator starts with unless configured otherwise.
var DefaultCities = []string{"Moscow", "London", "Paris", "New York", "Tokyo"}
