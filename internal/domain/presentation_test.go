package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeatherView_ParisScenario(t *testing.T) {
	v := NewWeatherView(decodeParis(t).ToDomain(), time.UTC)

	assert.Equal(t, "18.5", v.Temperature())
	assert.Equal(t, "18.0", v.FeelsLike())
	assert.Equal(t, "16.5", v.MinTemperature())
	assert.Equal(t, "20.0", v.MaxTemperature())
	assert.Equal(t, "Paris", v.LocationName())
	assert.Equal(t, "S", v.WindDirection())
	assert.Equal(t, "3.1 m/s", v.WindSpeed())
	assert.Equal(t, "Unknown Wind Gust", v.WindGust())
	assert.Equal(t, "1013 hPa", v.Pressure())
	assert.Equal(t, "60%", v.Humidity())
	assert.Equal(t, "0%", v.Cloudiness())
	assert.Equal(t, "FR", v.Country())
	assert.Equal(t, "10000 meters", v.Visibility())
	assert.Equal(t, "clear sky", v.ConditionDescription())
	assert.Equal(t, []string{"01d"}, v.ConditionIcons())
	assert.Equal(t, "06:40", v.SunriseTime())
	assert.Equal(t, "20:40", v.SunsetTime())
	assert.Equal(t, "11:20", v.LastTimeUpdated())
	assert.Equal(t, "Monday, April 18, 2022", v.LastDateUpdated())
}

func TestWeatherView_SunriseUsesGivenLocation(t *testing.T) {
	paris := time.FixedZone("CEST", 2*60*60)
	v := NewWeatherView(decodeParis(t).ToDomain(), paris)

	assert.Equal(t, "08:40", v.SunriseTime())
	assert.Equal(t, "22:40", v.SunsetTime())
}

func TestWeatherView_NilLocationUsesLocal(t *testing.T) {
	w := decodeParis(t).ToDomain()
	v := NewWeatherView(w, nil)

	assert.Equal(t, w.Sunrise.In(time.Local).Format("15:04"), v.SunriseTime())
}

func TestWeatherView_UnknownPlaceholders(t *testing.T) {
	v := NewWeatherView(Weather{}, time.UTC)

	assert.Equal(t, "Unknown Latitude", v.Latitude())
	assert.Equal(t, "Unknown Temperature", v.Temperature())
	assert.Equal(t, "Unknown Wind Direction", v.WindDirection())
	assert.Equal(t, "Unknown Sunrise Time", v.SunriseTime())
	assert.Equal(t, "Unknown Location", v.LocationName())
	assert.Equal(t, "No Weather Conditions Available", v.ConditionDescription())
	assert.Empty(t, v.ConditionIcons())
}

func TestWeatherView_ConditionWithoutDescription(t *testing.T) {
	w := Weather{Conditions: []WeatherCondition{
		{Description: Ptr("light rain")},
		{Main: Ptr("Mist")},
	}}
	assert.Equal(t, "light rain, No Description", NewWeatherView(w, time.UTC).ConditionDescription())
}

func TestCompassDirection(t *testing.T) {
	tests := []struct {
		deg  int
		want string
	}{
		{0, "N"},
		{22, "N"},
		{23, "NE"},
		{90, "E"},
		{135, "SE"},
		{180, "S"},
		{225, "SW"},
		{270, "W"},
		{315, "NW"},
		{337, "NW"},
		{338, "N"},
		{360, "N"},
		{-90, "W"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompassDirection(tt.deg), "deg=%d", tt.deg)
	}
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "18.0", formatDecimal(18))
	assert.Equal(t, "-3.25", formatDecimal(-3.25))
	assert.Equal(t, "48.893732", formatDecimal(48.893732))
}
