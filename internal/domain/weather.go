package domain

import (
	"slices"
	"time"
)

// WeatherCondition is one entry of the provider's condition list.
// Each field is independently optional.
type WeatherCondition struct {
	ID          *int    `json:"id"`
	Main        *string `json:"main"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

// Equal reports whether both conditions carry the same optional values.
func (c WeatherCondition) Equal(o WeatherCondition) bool {
	return equalPtr(c.ID, o.ID) &&
		equalPtr(c.Main, o.Main) &&
		equalPtr(c.Description, o.Description) &&
		equalPtr(c.Icon, o.Icon)
}

// Weather is an immutable snapshot of current conditions. It is rebuilt on
// every successful fetch and replaced wholesale, never mutated in place.
type Weather struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	Conditions []WeatherCondition `json:"conditions"`

	Temp      *float64 `json:"temp"`
	FeelsLike *float64 `json:"feels_like"`
	TempMin   *float64 `json:"temp_min"`
	TempMax   *float64 `json:"temp_max"`
	Pressure  *int     `json:"pressure"`
	Humidity  *int     `json:"humidity"`

	WindSpeed *float64 `json:"wind_speed"`
	WindDeg   *int     `json:"wind_deg"`
	WindGust  *float64 `json:"wind_gust"`

	CloudsAll *int `json:"clouds_all"`

	Country *string    `json:"country"`
	Sunrise *time.Time `json:"sunrise"`
	Sunset  *time.Time `json:"sunset"`

	Name       *string    `json:"name"`
	Visibility *int       `json:"visibility"`
	ObservedAt *time.Time `json:"observed_at"`
}

// Equal compares every field structurally. Pointers are compared by the value
// they point to; instants by time.Time.Equal.
func (w Weather) Equal(o Weather) bool {
	if (w.Conditions == nil) != (o.Conditions == nil) {
		return false
	}
	if !slices.EqualFunc(w.Conditions, o.Conditions, WeatherCondition.Equal) {
		return false
	}
	return equalPtr(w.Lat, o.Lat) &&
		equalPtr(w.Lon, o.Lon) &&
		equalPtr(w.Temp, o.Temp) &&
		equalPtr(w.FeelsLike, o.FeelsLike) &&
		equalPtr(w.TempMin, o.TempMin) &&
		equalPtr(w.TempMax, o.TempMax) &&
		equalPtr(w.Pressure, o.Pressure) &&
		equalPtr(w.Humidity, o.Humidity) &&
		equalPtr(w.WindSpeed, o.WindSpeed) &&
		equalPtr(w.WindDeg, o.WindDeg) &&
		equalPtr(w.WindGust, o.WindGust) &&
		equalPtr(w.CloudsAll, o.CloudsAll) &&
		equalPtr(w.Country, o.Country) &&
		equalTime(w.Sunrise, o.Sunrise) &&
		equalTime(w.Sunset, o.Sunset) &&
		equalPtr(w.Name, o.Name) &&
		equalPtr(w.Visibility, o.Visibility) &&
		equalTime(w.ObservedAt, o.ObservedAt)
}

// LocationName returns the display name, or "" when the provider sent none.
func (w Weather) LocationName() string {
	if w.Name == nil {
		return ""
	}
	return *w.Name
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Ptr returns a pointer to v. Handy for building optional fields.
func Ptr[T any](v T) *T {
	return &v
}
