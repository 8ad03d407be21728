package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	locationadapter "github.com/couchcryptid/weather-stories/internal/adapter/location"
	"github.com/couchcryptid/weather-stories/internal/domain"
	"github.com/couchcryptid/weather-stories/internal/feature/location"
	"github.com/couchcryptid/weather-stories/internal/feature/weather"
	"github.com/couchcryptid/weather-stories/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type fakeProvider struct {
	mu      sync.Mutex
	status  domain.AuthorizationStatus
	prompts int
	fix     domain.LocationSnapshot
}

func (p *fakeProvider) RequestAuthorization() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts++
}

func (p *fakeProvider) AuthorizationStatus() domain.AuthorizationStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *fakeProvider) AuthorizationUpdates(ctx context.Context) <-chan domain.AuthorizationStatus {
	ch := make(chan domain.AuthorizationStatus)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func (p *fakeProvider) CurrentLocation(context.Context) (domain.LocationSnapshot, error) {
	return p.fix, nil
}

func (p *fakeProvider) promptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prompts
}

type fakeRepo struct {
	mu    sync.Mutex
	calls []domain.Coordinates
}

func (f *fakeRepo) FetchWeather(_ context.Context, lat, lon float64) (domain.WeatherResponseDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, domain.Coordinates{Lat: lat, Lon: lon})
	return domain.WeatherResponseDTO{Name: domain.Ptr("Paris"), Main: &domain.MainDTO{Temp: domain.Ptr(18.5)}}, nil
}

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var paris = domain.Coordinates{Lat: 48.893732, Lon: 2.406402}

func newReducer(p *fakeProvider, repo *fakeRepo) Reducer {
	return NewReducer(location.NewReducer(p), weather.NewReducer(repo, nil))
}

// --- rule tests ---

func TestLocationDenied_ForwardedToWeather(t *testing.T) {
	r := newReducer(&fakeProvider{}, &fakeRepo{})

	s, effects := r.Reduce(State{}, LocationAction{location.LocationPermissionDenied{Message: "denied"}})
	assert.Equal(t, "denied", s.Location.ErrorMessage)

	got := store.Collect(context.Background(), effects)
	assert.Equal(t, []Action{WeatherAction{weather.LocationPermissionDenied{Message: "denied"}}}, got)
}

func TestLocationSuccess_TranslatedIntoFetchWeather(t *testing.T) {
	r := newReducer(&fakeProvider{}, &fakeRepo{})
	start := State{Location: location.State{Status: domain.StatusAuthorizedAlways, IsFetchingLocation: true, Generation: 1}}

	fix := domain.LocationSnapshot{Coordinates: paris}
	s, effects := r.Reduce(start, LocationAction{location.CurrentLocationResponse{Location: fix, Generation: 1}})
	require.NotNil(t, s.Location.CurrentLocation)

	got := store.Collect(context.Background(), effects)
	assert.Equal(t, []Action{WeatherAction{weather.FetchWeather{Coordinates: paris}}}, got)
}

func TestLocationFailureOrStale_NotTranslated(t *testing.T) {
	r := newReducer(&fakeProvider{}, &fakeRepo{})
	start := State{Location: location.State{Status: domain.StatusAuthorizedAlways, IsFetchingLocation: true, Generation: 2}}

	_, effects := r.Reduce(start, LocationAction{location.CurrentLocationResponse{Err: &domain.LocationError{Kind: domain.LocationFetchFailed}, Generation: 2}})
	assert.Empty(t, store.Collect(context.Background(), effects))

	_, effects = r.Reduce(start, LocationAction{location.CurrentLocationResponse{Location: domain.LocationSnapshot{Coordinates: paris}, Generation: 1}})
	assert.Empty(t, store.Collect(context.Background(), effects))
}

func TestNeedRequestAuthorization_TranslatedIntoLocationRequest(t *testing.T) {
	r := newReducer(&fakeProvider{}, &fakeRepo{})
	start := State{Weather: weather.State{Err: domain.NewPermissionDenied()}}

	_, effects := r.Reduce(start, WeatherAction{weather.Retry{}})
	got := store.Collect(context.Background(), effects)
	require.Equal(t, []Action{WeatherAction{weather.NeedRequestAuthorization{}}}, got)

	_, effects = r.Reduce(start, got[0])
	assert.Equal(t, []Action{LocationAction{location.RequestAuthorization{}}}, store.Collect(context.Background(), effects))
}

func TestChildEffectsAreWrapped(t *testing.T) {
	repo := &fakeRepo{}
	r := newReducer(&fakeProvider{}, repo)

	_, effects := r.Reduce(State{}, WeatherAction{weather.FetchWeather{Coordinates: paris}})
	got := store.Collect(context.Background(), effects)

	require.Len(t, got, 1)
	wa, ok := got[0].(WeatherAction)
	require.True(t, ok)
	assert.IsType(t, weather.WeatherResponse{}, wa.Action)
}

func TestActionNames(t *testing.T) {
	assert.Equal(t, "location/RequestAuthorization", store.ActionName(LocationAction{location.RequestAuthorization{}}))
	assert.Equal(t, "weather/FetchWeather", store.ActionName(WeatherAction{weather.FetchWeather{}}))
}

// --- end to end through the store ---

func TestStore_AuthorizationToWeather(t *testing.T) {
	p := &fakeProvider{status: domain.StatusAuthorizedWhenInUse, fix: domain.LocationSnapshot{Coordinates: paris}}
	repo := &fakeRepo{}
	ready := &Readiness{}

	s := NewStore(newReducer(p, repo),
		store.WithLogger[State, Action](slog.New(slog.NewTextHandler(io.Discard, nil))),
		store.WithObserver[State, Action](ready.Observe),
	)
	require.Error(t, ready.CheckReadiness(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, s.Run(ctx))
	}()
	defer func() {
		cancel()
		<-done
	}()

	s.Send(LocationAction{location.RequestAuthorization{}})

	require.Eventually(t, func() bool {
		w := s.State().Weather
		return w.Weather != nil && !w.IsFetching
	}, 2*time.Second, 5*time.Millisecond)

	st := s.State()
	assert.Equal(t, "Paris", st.Weather.Weather.LocationName())
	assert.Equal(t, paris, *st.Weather.LastKnownCoordinates)
	assert.Equal(t, location.PhaseAuthorized, st.Location.Phase())
	assert.False(t, st.Location.IsFetchingLocation)
	assert.Equal(t, 1, p.promptCount())
	assert.NoError(t, ready.CheckReadiness(context.Background()))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, []domain.Coordinates{paris}, repo.calls)
}

func TestStore_DeniedShowsAlertThenRetryReprompts(t *testing.T) {
	p := &fakeProvider{status: domain.StatusDenied}
	s := NewStore(newReducer(p, &fakeRepo{}),
		store.WithLogger[State, Action](slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	s.Send(LocationAction{location.RequestAuthorization{}})
	require.Eventually(t, func() bool { return s.State().Weather.Alert != nil }, 2*time.Second, 5*time.Millisecond)

	st := s.State()
	assert.Equal(t, location.DeniedMessage, st.Weather.Alert.Title)
	assert.Equal(t, weather.AffordanceRequestAuthorization, weather.RetryAffordance(st.Weather))

	s.Send(WeatherAction{weather.AlertResponded{Response: weather.AlertCancel}})
	s.Send(WeatherAction{weather.Retry{}})

	require.Eventually(t, func() bool { return p.promptCount() == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, domain.WeatherErrorPermissionDenied, s.State().Weather.Err.Kind)
}

func TestStore_OneWeatherFetchPerAuthorizationRequest(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	device := locationadapter.NewSimulated(paris, domain.StatusAuthorizedWhenInUse, discard)
	repo := &fakeRepo{}

	s := NewStore(NewReducer(location.NewReducer(device), weather.NewReducer(repo, nil)),
		store.WithLogger[State, Action](discard),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	s.Send(LocationAction{location.RequestAuthorization{}})
	require.Eventually(t, func() bool { return s.State().Weather.Weather != nil }, 2*time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return repo.count() > 1 }, 100*time.Millisecond, 5*time.Millisecond,
		"prompt read and status stream report the same decision")

	s.Send(LocationAction{location.RequestAuthorization{}})
	require.Eventually(t, func() bool { return repo.count() == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return repo.count() > 2 }, 100*time.Millisecond, 5*time.Millisecond)

	device.SetStatus(domain.StatusDenied)
	require.Eventually(t, func() bool { return s.State().Weather.Alert != nil }, 2*time.Second, 5*time.Millisecond)
	device.SetStatus(domain.StatusAuthorizedAlways)
	require.Eventually(t, func() bool { return repo.count() == 3 }, 2*time.Second, 5*time.Millisecond)
}
