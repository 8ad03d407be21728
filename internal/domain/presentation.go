package domain

import (
	"strconv"
	"strings"
	"time"
)

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// WeatherView formats a Weather for display.
type WeatherView struct {
	weather Weather
	loc     *time.Location
}

// NewWeatherView renders instants in loc; nil means time.Local.
func NewWeatherView(w Weather, loc *time.Location) WeatherView {
	if loc == nil {
		loc = time.Local
	}
	return WeatherView{weather: w, loc: loc}
}

func (v WeatherView) Latitude() string {
	return orUnknown(v.weather.Lat, formatDecimal, "Unknown Latitude")
}

func (v WeatherView) Longitude() string {
	return orUnknown(v.weather.Lon, formatDecimal, "Unknown Longitude")
}

// ConditionDescription joins every condition description with ", ".
func (v WeatherView) ConditionDescription() string {
	if len(v.weather.Conditions) == 0 {
		return "No Weather Conditions Available"
	}
	parts := make([]string, 0, len(v.weather.Conditions))
	for _, c := range v.weather.Conditions {
		if c.Description == nil {
			parts = append(parts, "No Description")
			continue
		}
		parts = append(parts, *c.Description)
	}
	return strings.Join(parts, ", ")
}

func (v WeatherView) ConditionIcons() []string {
	icons := make([]string, 0, len(v.weather.Conditions))
	for _, c := range v.weather.Conditions {
		if c.Icon != nil {
			icons = append(icons, *c.Icon)
		}
	}
	return icons
}

// Temperature is the current temperature in °C, without unit.
func (v WeatherView) Temperature() string {
	return orUnknown(v.weather.Temp, formatDecimal, "Unknown Temperature")
}

func (v WeatherView) FeelsLike() string {
	return orUnknown(v.weather.FeelsLike, formatDecimal, "Unknown Feels Like Temperature")
}

func (v WeatherView) MinTemperature() string {
	return orUnknown(v.weather.TempMin, formatDecimal, "Unknown Min Temperature")
}

func (v WeatherView) MaxTemperature() string {
	return orUnknown(v.weather.TempMax, formatDecimal, "Unknown Max Temperature")
}

func (v WeatherView) Pressure() string {
	return orUnknown(v.weather.Pressure, withUnit(" hPa"), "Unknown Pressure")
}

func (v WeatherView) Humidity() string {
	return orUnknown(v.weather.Humidity, withUnit("%"), "Unknown Humidity")
}

func (v WeatherView) WindSpeed() string {
	return orUnknown(v.weather.WindSpeed, func(f float64) string { return formatDecimal(f) + " m/s" }, "Unknown Wind Speed")
}

// WindDirection buckets the heading into an 8-point compass direction.
func (v WeatherView) WindDirection() string {
	if v.weather.WindDeg == nil {
		return "Unknown Wind Direction"
	}
	return CompassDirection(*v.weather.WindDeg)
}

func (v WeatherView) WindGust() string {
	return orUnknown(v.weather.WindGust, func(f float64) string { return formatDecimal(f) + " m/s" }, "Unknown Wind Gust")
}

func (v WeatherView) Cloudiness() string {
	return orUnknown(v.weather.CloudsAll, withUnit("%"), "Unknown Cloudiness")
}

func (v WeatherView) Country() string {
	return orUnknown(v.weather.Country, func(s string) string { return s }, "Unknown Country")
}

func (v WeatherView) SunriseTime() string {
	return orUnknown(v.weather.Sunrise, v.clock, "Unknown Sunrise Time")
}

func (v WeatherView) SunsetTime() string {
	return orUnknown(v.weather.Sunset, v.clock, "Unknown Sunset Time")
}

func (v WeatherView) LocationName() string {
	return orUnknown(v.weather.Name, func(s string) string { return s }, "Unknown Location")
}

func (v WeatherView) Visibility() string {
	return orUnknown(v.weather.Visibility, withUnit(" meters"), "Unknown Visibility")
}

func (v WeatherView) LastTimeUpdated() string {
	return orUnknown(v.weather.ObservedAt, v.clock, "Unknown Update Time")
}

func (v WeatherView) LastDateUpdated() string {
	return orUnknown(v.weather.ObservedAt, func(t time.Time) string {
		return t.In(v.loc).Format("Monday, January 2, 2006")
	}, "Unknown Update Time")
}

func (v WeatherView) clock(t time.Time) string {
	return t.In(v.loc).Format("15:04")
}

// CompassDirection maps degrees to N, NE, E, SE, S, SW, W or NW.
func CompassDirection(deg int) string {
	deg = ((deg % 360) + 360) % 360
	return compassPoints[int((float64(deg)+22.5)/45.0)%8]
}

// formatDecimal keeps at least one fractional digit: 18 -> "18.0", 18.5 -> "18.5".
func formatDecimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func withUnit(unit string) func(int) string {
	return func(n int) string { return strconv.Itoa(n) + unit }
}

func orUnknown[T any](v *T, format func(T) string, unknown string) string {
	if v == nil {
		return unknown
	}
	return format(*v)
}
