// Package location tracks location permission and the current location fix.
package location

import (
	"context"

	"github.com/couchcryptid/weather-stories/internal/domain"
	"github.com/couchcryptid/weather-stories/internal/store"
)

// Messages raised when access is refused.
const (
	DeniedMessage        = "Location access was denied."
	RestrictedMessage    = "Location access is restricted on this device."
	NotAuthorizedMessage = "Location access not authorized."
)

// Provider is the device location collaborator.
type Provider interface {
	// RequestAuthorization shows the permission prompt and returns immediately.
	RequestAuthorization()
	AuthorizationStatus() domain.AuthorizationStatus
	// AuthorizationUpdates delivers every status change until ctx is done.
	AuthorizationUpdates(ctx context.Context) <-chan domain.AuthorizationStatus
	CurrentLocation(ctx context.Context) (domain.LocationSnapshot, error)
}

// Phase is the coarse lifecycle of the machine.
type Phase string

const (
	PhaseIdle                  Phase = "idle"
	PhaseAwaitingAuthorization Phase = "awaitingAuthorization"
	PhaseAuthorized            Phase = "authorized"
	PhaseDenied                Phase = "denied"
	PhaseRestricted            Phase = "restricted"
)

// State is the location slice of the app state.
type State struct {
	Status                domain.AuthorizationStatus `json:"status"`
	AwaitingAuthorization bool                       `json:"awaiting_authorization"`
	CurrentLocation       *domain.LocationSnapshot   `json:"current_location,omitempty"`
	IsFetchingLocation    bool                       `json:"is_fetching_location"`
	ErrorMessage          string                     `json:"error_message,omitempty"`

	// Subscribed is set once the authorization stream has been opened.
	Subscribed bool `json:"-"`
	// PromptPending is set by RequestAuthorization and cleared by the first
	// decided status that follows it.
	PromptPending bool `json:"-"`
	// Generation numbers location requests; only the latest response applies.
	Generation uint64 `json:"-"`
}

// Phase collapses the state into the single phase the UI shows.
func (s State) Phase() Phase {
	switch {
	case s.Status.Authorized():
		return PhaseAuthorized
	case s.Status == domain.StatusDenied:
		return PhaseDenied
	case s.Status == domain.StatusRestricted:
		return PhaseRestricted
	case s.AwaitingAuthorization:
		return PhaseAwaitingAuthorization
	default:
		return PhaseIdle
	}
}

// Accepts reports whether resp answers the request currently in flight.
func (s State) Accepts(resp CurrentLocationResponse) bool {
	return s.IsFetchingLocation && resp.Generation == s.Generation
}

// Action is anything the location machine reacts to.
type Action interface{ isLocationAction() }

type (
	// RequestAuthorization prompts for permission and re-reads the current status.
	RequestAuthorization struct{}

	// AuthorizationResponse carries a status read from the provider.
	AuthorizationResponse struct {
		Status domain.AuthorizationStatus
	}

	// RequestCurrentLocation asks for a single fix.
	RequestCurrentLocation struct{}

	// CurrentLocationResponse reports the outcome of a fix request.
	CurrentLocationResponse struct {
		Location   domain.LocationSnapshot
		Err        error
		Generation uint64
	}

	// LocationPermissionDenied is raised for the parent when access is refused.
	LocationPermissionDenied struct {
		Message string
	}
)

func (RequestAuthorization) isLocationAction()     {}
func (AuthorizationResponse) isLocationAction()    {}
func (RequestCurrentLocation) isLocationAction()   {}
func (CurrentLocationResponse) isLocationAction()  {}
func (LocationPermissionDenied) isLocationAction() {}

// Succeeded reports whether the response carries a fix.
func (r CurrentLocationResponse) Succeeded() bool { return r.Err == nil }

// Reducer is the location state machine.
type Reducer struct {
	provider Provider
}

// NewReducer builds a Reducer that talks to p.
func NewReducer(p Provider) Reducer {
	return Reducer{provider: p}
}

// Reduce applies one action and returns the effects it starts.
func (r Reducer) Reduce(s State, action Action) (State, []store.Effect[Action]) {
	switch a := action.(type) {
	case RequestAuthorization:
		return r.requestAuthorization(s)

	case AuthorizationResponse:
		changed := a.Status != s.Status
		answered := s.PromptPending && a.Status != domain.StatusNotDetermined
		s.Status = a.Status
		if a.Status != domain.StatusNotDetermined {
			s.AwaitingAuthorization = false
			s.PromptPending = false
		}
		// The prompt read and the status stream both report the same decision;
		// only a change or the answer to a prompt moves the machine.
		if !changed && !answered {
			return s, nil
		}
		switch {
		case a.Status.Authorized():
			return r.requestCurrentLocation(s)
		case a.Status == domain.StatusDenied:
			return s, []store.Effect[Action]{store.Just[Action](LocationPermissionDenied{Message: DeniedMessage})}
		case a.Status == domain.StatusRestricted:
			return s, []store.Effect[Action]{store.Just[Action](LocationPermissionDenied{Message: RestrictedMessage})}
		}
		return s, nil

	case RequestCurrentLocation:
		return r.requestCurrentLocation(s)

	case CurrentLocationResponse:
		if !s.Accepts(a) {
			return s, nil
		}
		s.IsFetchingLocation = false
		if a.Err != nil {
			s.ErrorMessage = a.Err.Error()
			return s, nil
		}
		loc := a.Location
		s.CurrentLocation = &loc
		s.ErrorMessage = ""
		return s, nil

	case LocationPermissionDenied:
		s.ErrorMessage = a.Message
		return s, nil
	}
	return s, nil
}

func (r Reducer) requestAuthorization(s State) (State, []store.Effect[Action]) {
	if s.Status == domain.StatusNotDetermined {
		s.AwaitingAuthorization = true
	}
	s.PromptPending = true

	effects := []store.Effect[Action]{
		func(_ context.Context, send store.Send[Action]) {
			r.provider.RequestAuthorization()
			send(AuthorizationResponse{Status: r.provider.AuthorizationStatus()})
		},
	}

	if !s.Subscribed {
		s.Subscribed = true
		effects = append(effects, func(ctx context.Context, send store.Send[Action]) {
			updates := r.provider.AuthorizationUpdates(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case status, ok := <-updates:
					if !ok {
						return
					}
					send(AuthorizationResponse{Status: status})
				}
			}
		})
	}
	return s, effects
}

func (r Reducer) requestCurrentLocation(s State) (State, []store.Effect[Action]) {
	if !s.Status.Authorized() {
		s.ErrorMessage = NotAuthorizedMessage
		return s, nil
	}
	if s.IsFetchingLocation {
		return s, nil
	}

	s.IsFetchingLocation = true
	s.Generation++
	gen := s.Generation

	return s, []store.Effect[Action]{
		func(ctx context.Context, send store.Send[Action]) {
			loc, err := r.provider.CurrentLocation(ctx)
			send(CurrentLocationResponse{Location: loc, Err: err, Generation: gen})
		},
	}
}
