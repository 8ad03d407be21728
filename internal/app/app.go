// Package app composes the location and weather machines into one state tree
// and routes the events that cross between them.
package app

import (
	"github.com/couchcryptid/weather-stories/internal/feature/location"
	"github.com/couchcryptid/weather-stories/internal/feature/weather"
	"github.com/couchcryptid/weather-stories/internal/store"
)

// State is the whole application state.
type State struct {
	Location location.State `json:"location"`
	Weather  weather.State  `json:"weather"`
}

// Action is anything the root store accepts.
type Action interface{ isAppAction() }

// LocationAction routes a location action to the location machine.
type LocationAction struct{ Action location.Action }

// WeatherAction routes a weather action to the weather machine.
type WeatherAction struct{ Action weather.Action }

func (LocationAction) isAppAction() {}
func (WeatherAction) isAppAction()  {}

// ActionName prefixes the child action name for logs and metrics.
func (a LocationAction) ActionName() string { return "location/" + store.ActionName(a.Action) }
func (a WeatherAction) ActionName() string  { return "weather/" + store.ActionName(a.Action) }

// Reducer runs both children, then applies the cross-feature rules.
type Reducer struct {
	location location.Reducer
	weather  weather.Reducer
}

// NewReducer composes the two feature reducers.
func NewReducer(loc location.Reducer, w weather.Reducer) Reducer {
	return Reducer{location: loc, weather: w}
}

// Reduce routes the action to its feature, then chains location into weather.
func (r Reducer) Reduce(s State, action Action) (State, []store.Effect[Action]) {
	switch a := action.(type) {
	case LocationAction:
		prev := s.Location
		next, effects := r.location.Reduce(s.Location, a.Action)
		s.Location = next
		out := store.Map(effects, wrapLocation)
		return s, append(out, locationRules(prev, a.Action)...)

	case WeatherAction:
		next, effects := r.weather.Reduce(s.Weather, a.Action)
		s.Weather = next
		out := store.Map(effects, wrapWeather)
		return s, append(out, weatherRules(a.Action)...)
	}
	return s, nil
}

func locationRules(prev location.State, action location.Action) []store.Effect[Action] {
	switch a := action.(type) {
	case location.LocationPermissionDenied:
		return []store.Effect[Action]{
			store.Just[Action](WeatherAction{weather.LocationPermissionDenied{Message: a.Message}}),
		}
	case location.CurrentLocationResponse:
		if !a.Succeeded() || !prev.Accepts(a) {
			return nil
		}
		return []store.Effect[Action]{
			store.Just[Action](WeatherAction{weather.FetchWeather{Coordinates: a.Location.Coordinates}}),
		}
	}
	return nil
}

func weatherRules(action weather.Action) []store.Effect[Action] {
	if _, ok := action.(weather.NeedRequestAuthorization); ok {
		return []store.Effect[Action]{
			store.Just[Action](LocationAction{location.RequestAuthorization{}}),
		}
	}
	return nil
}

func wrapLocation(a location.Action) Action { return LocationAction{a} }
func wrapWeather(a weather.Action) Action   { return WeatherAction{a} }
