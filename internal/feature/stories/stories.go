// Package stories is the city photo slideshow: the fetched story list, the
// current index and the progress of the current slide.
package stories

import (
	"context"

	"github.com/couchcryptid/weather-stories/internal/domain"
	"github.com/couchcryptid/weather-stories/internal/store"
	"github.com/google/uuid"
)

// PhotoCount is how many photos a fetch asks for.
const PhotoCount = 5

// FetchFailedMessage is shown when a failure carries no text of its own.
const FetchFailedMessage = "Unable to load stories."

// PhotoSource returns photo URLs for a city. It fails as a whole when any
// single photo cannot be fetched.
type PhotoSource interface {
	FetchRandomPhotoURLs(ctx context.Context, city string, count int) ([]string, error)
}

// State is one slideshow session.
type State struct {
	City         string         `json:"city"`
	Stories      []domain.Story `json:"stories"`
	CurrentIndex int            `json:"current_index"`
	Progress     float64        `json:"progress"`
	IsLoading    bool           `json:"is_loading"`
	ErrorMessage string         `json:"error_message,omitempty"`

	Generation uint64 `json:"-"`
}

// NewState starts a session for city.
func NewState(city string) State {
	return State{City: city}
}

// Current returns the story on screen, if any.
func (s State) Current() (domain.Story, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Stories) {
		return domain.Story{}, false
	}
	return s.Stories[s.CurrentIndex], true
}

// Action is anything the stories machine reacts to.
type Action interface{ isStoriesAction() }

type (
	// Fetch loads a fresh set of photos for the city.
	Fetch struct{}

	// FetchResponse carries the result of the Fetch with the same Generation.
	FetchResponse struct {
		Stories    []domain.Story
		Err        error
		Generation uint64
	}

	// Next advances, wrapping to the first story after the last.
	Next struct{}

	// Previous steps back, stopping at the first story.
	Previous struct{}

	// UpdateProgress overwrites progress as given.
	UpdateProgress struct {
		Value float64
	}

	// DismissError clears the error message.
	DismissError struct{}
)

func (Fetch) isStoriesAction()          {}
func (FetchResponse) isStoriesAction()  {}
func (Next) isStoriesAction()           {}
func (Previous) isStoriesAction()       {}
func (UpdateProgress) isStoriesAction() {}
func (DismissError) isStoriesAction()   {}

// Reducer is the stories state machine.
type Reducer struct {
	source PhotoSource
	newID  func() uuid.UUID
}

// NewReducer builds a Reducer. newID may be nil.
func NewReducer(source PhotoSource, newID func() uuid.UUID) Reducer {
	return Reducer{source: source, newID: newID}
}

// Reduce applies one action and returns the effects it starts.
func (r Reducer) Reduce(s State, action Action) (State, []store.Effect[Action]) {
	switch a := action.(type) {
	case Fetch:
		s.IsLoading = true
		s.Generation++
		gen, city := s.Generation, s.City
		return s, []store.Effect[Action]{
			func(ctx context.Context, send store.Send[Action]) {
				urls, err := r.source.FetchRandomPhotoURLs(ctx, city, PhotoCount)
				if err != nil {
					send(FetchResponse{Err: err, Generation: gen})
					return
				}
				send(FetchResponse{Stories: domain.NewStories(urls, r.newID), Generation: gen})
			},
		}

	case FetchResponse:
		if a.Generation != s.Generation {
			return s, nil
		}
		s.IsLoading = false
		if a.Err != nil {
			s.Stories = nil
			s.CurrentIndex = 0
			s.Progress = 0
			s.ErrorMessage = a.Err.Error()
			if s.ErrorMessage == "" {
				s.ErrorMessage = FetchFailedMessage
			}
			return s, nil
		}
		s.Stories = a.Stories
		s.CurrentIndex = 0
		s.Progress = 0
		s.ErrorMessage = ""
		return s, nil

	case Next:
		if s.CurrentIndex < len(s.Stories)-1 {
			s.CurrentIndex++
		} else {
			s.CurrentIndex = 0
		}
		s.Progress = 0
		return s, nil

	case Previous:
		if s.CurrentIndex > 0 {
			s.CurrentIndex--
		}
		s.Progress = 0
		return s, nil

	case UpdateProgress:
		s.Progress = a.Value
		return s, nil

	case DismissError:
		s.ErrorMessage = ""
		return s, nil
	}
	return s, nil
}
