// Package weather is the weather fetch state machine: last known
// coordinates, the loaded value, the last error and the permission alert.
package weather

import (
	"context"
	"errors"

	"github.com/couchcryptid/weather-stories/internal/domain"
	"github.com/couchcryptid/weather-stories/internal/store"
)

// Repository fetches raw weather for a coordinate.
type Repository interface {
	FetchWeather(ctx context.Context, lat, lon float64) (domain.WeatherResponseDTO, error)
}

// SettingsOpener sends the user to the system settings screen.
type SettingsOpener interface {
	OpenSettings(ctx context.Context) error
}

// State is the weather slice of the app state.
type State struct {
	Weather              *domain.Weather      `json:"weather,omitempty"`
	LastKnownCoordinates *domain.Coordinates  `json:"last_known_coordinates,omitempty"`
	IsFetching           bool                 `json:"is_fetching"`
	Err                  *domain.WeatherError `json:"-"`
	Alert                *AlertRequest        `json:"alert,omitempty"`
	ShowStories          bool                 `json:"show_stories"`

	// Generation numbers fetches; only the response to the latest one applies.
	Generation uint64 `json:"-"`
}

// Action is anything the weather machine reacts to.
type Action interface{ isWeatherAction() }

type (
	// FetchWeather loads weather for Coordinates and remembers them for retry.
	FetchWeather struct {
		Coordinates domain.Coordinates
	}

	// RetryLastFetch repeats the fetch for the last known coordinates.
	RetryLastFetch struct{}

	// WeatherResponse carries the outcome of a fetch.
	WeatherResponse struct {
		Weather    domain.Weather
		Err        *domain.WeatherError
		Generation uint64
	}

	// LocationPermissionDenied presents the settings alert.
	LocationPermissionDenied struct {
		Message string
	}

	// Retry runs whichever retry the current error calls for.
	Retry struct{}

	// NeedRequestAuthorization is raised for the parent to ask for location
	// permission again.
	NeedRequestAuthorization struct{}

	// AlertResponded is the user's choice on the permission alert.
	AlertResponded struct {
		Response AlertResponse
	}

	// NavigateToStories shows or hides the slideshow.
	NavigateToStories struct {
		Show bool
	}
)

func (FetchWeather) isWeatherAction()             {}
func (RetryLastFetch) isWeatherAction()           {}
func (WeatherResponse) isWeatherAction()          {}
func (LocationPermissionDenied) isWeatherAction() {}
func (Retry) isWeatherAction()                    {}
func (NeedRequestAuthorization) isWeatherAction() {}
func (AlertResponded) isWeatherAction()           {}
func (NavigateToStories) isWeatherAction()        {}

// MissingCoordinatesDetail describes a retry issued before any fetch.
const MissingCoordinatesDetail = "no location has been fetched yet, so there is nothing to retry"

// Reducer is the weather state machine.
type Reducer struct {
	repo     Repository
	settings SettingsOpener
}

// NewReducer builds a Reducer that fetches from repo and opens settings through settings.
func NewReducer(repo Repository, settings SettingsOpener) Reducer {
	return Reducer{repo: repo, settings: settings}
}

// Reduce applies one action and returns the effects it starts.
func (r Reducer) Reduce(s State, action Action) (State, []store.Effect[Action]) {
	switch a := action.(type) {
	case FetchWeather:
		return r.fetch(s, a.Coordinates)

	case RetryLastFetch:
		if s.LastKnownCoordinates == nil {
			s.Err = domain.NewUnknownError(MissingCoordinatesDetail)
			return s, nil
		}
		return r.fetch(s, *s.LastKnownCoordinates)

	case WeatherResponse:
		if !s.IsFetching || a.Generation != s.Generation {
			return s, nil
		}
		s.IsFetching = false
		if a.Err != nil {
			s.Err = a.Err
			return s, nil
		}
		w := a.Weather
		s.Weather = &w
		s.Err = nil
		return s, nil

	case LocationPermissionDenied:
		s.Alert = newPermissionAlert(a.Message)
		s.Err = domain.NewPermissionDenied()
		return s, nil

	case Retry:
		if RetryAffordance(s) == AffordanceRequestAuthorization {
			return s, []store.Effect[Action]{store.Just[Action](NeedRequestAuthorization{})}
		}
		return r.Reduce(s, RetryLastFetch{})

	case NeedRequestAuthorization:
		return s, nil

	case AlertResponded:
		s.Alert = nil
		if a.Response == AlertOpenSettings && r.settings != nil {
			return s, []store.Effect[Action]{
				store.FireAndForget[Action](func(ctx context.Context) {
					_ = r.settings.OpenSettings(ctx)
				}),
			}
		}
		return s, nil

	case NavigateToStories:
		s.ShowStories = a.Show
		return s, nil
	}
	return s, nil
}

func (r Reducer) fetch(s State, c domain.Coordinates) (State, []store.Effect[Action]) {
	s.IsFetching = true
	s.Err = nil
	s.LastKnownCoordinates = &c
	s.Generation++
	gen := s.Generation

	return s, []store.Effect[Action]{
		func(ctx context.Context, send store.Send[Action]) {
			dto, err := r.repo.FetchWeather(ctx, c.Lat, c.Lon)
			if err != nil {
				send(WeatherResponse{Err: classify(err), Generation: gen})
				return
			}
			send(WeatherResponse{Weather: dto.ToDomain(), Generation: gen})
		},
	}
}

// unreachable is implemented by collaborator errors raised before any
// response arrived.
type unreachable interface {
	Unreachable() bool
}

func classify(err error) *domain.WeatherError {
	var we *domain.WeatherError
	if errors.As(err, &we) {
		return we
	}
	var u unreachable
	if errors.As(err, &u) && u.Unreachable() {
		return domain.NewNetworkFailure()
	}
	return domain.NewAPIError(err)
}

// Affordance is the retry a screen should offer for the current error.
type Affordance string

const (
	AffordanceNone                 Affordance = "none"
	AffordanceRetryFetch           Affordance = "retryFetch"
	AffordanceRequestAuthorization Affordance = "requestAuthorization"
)

// RetryAffordance picks the retry for s.Err. Permission errors go back to the
// location machine, everything else retries the last fetch.
func RetryAffordance(s State) Affordance {
	switch {
	case s.Err == nil:
		return AffordanceNone
	case s.Err.Kind == domain.WeatherErrorPermissionDenied:
		return AffordanceRequestAuthorization
	default:
		return AffordanceRetryFetch
	}
}
