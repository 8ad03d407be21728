package http

import (
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-stories/internal/app"
	"github.com/couchcryptid/weather-stories/internal/domain"
	"github.com/couchcryptid/weather-stories/internal/feature/location"
	"github.com/couchcryptid/weather-stories/internal/feature/stories"
	"github.com/couchcryptid/weather-stories/internal/feature/weather"
)

type stateResponse struct {
	Location location.State  `json:"location"`
	Phase    location.Phase  `json:"location_phase"`
	Weather  weatherResponse `json:"weather"`
}

type weatherResponse struct {
	Current              *weatherView          `json:"current,omitempty"`
	LastKnownCoordinates *domain.Coordinates   `json:"last_known_coordinates,omitempty"`
	IsFetching           bool                  `json:"is_fetching"`
	Error                string                `json:"error,omitempty"`
	ErrorKind            string                `json:"error_kind,omitempty"`
	Retry                weather.Affordance    `json:"retry"`
	Alert                *weather.AlertRequest `json:"alert,omitempty"`
	ShowStories          bool                  `json:"show_stories"`
}

// weatherView is the formatted weather, one string per display field.
type weatherView struct {
	Location      string   `json:"location"`
	Country       string   `json:"country"`
	Latitude      string   `json:"latitude"`
	Longitude     string   `json:"longitude"`
	Conditions    string   `json:"conditions"`
	Icons         []string `json:"icons"`
	Temperature   string   `json:"temperature"`
	FeelsLike     string   `json:"feels_like"`
	MinTemp       string   `json:"min_temperature"`
	MaxTemp       string   `json:"max_temperature"`
	Pressure      string   `json:"pressure"`
	Humidity      string   `json:"humidity"`
	WindSpeed     string   `json:"wind_speed"`
	WindDirection string   `json:"wind_direction"`
	WindGust      string   `json:"wind_gust"`
	Cloudiness    string   `json:"cloudiness"`
	Visibility    string   `json:"visibility"`
	Sunrise       string   `json:"sunrise"`
	Sunset        string   `json:"sunset"`
	UpdatedTime   string   `json:"updated_time"`
	UpdatedDate   string   `json:"updated_date"`
}

func newWeatherView(v domain.WeatherView) *weatherView {
	return &weatherView{
		Location:      v.LocationName(),
		Country:       v.Country(),
		Latitude:      v.Latitude(),
		Longitude:     v.Longitude(),
		Conditions:    v.ConditionDescription(),
		Icons:         v.ConditionIcons(),
		Temperature:   v.Temperature(),
		FeelsLike:     v.FeelsLike(),
		MinTemp:       v.MinTemperature(),
		MaxTemp:       v.MaxTemperature(),
		Pressure:      v.Pressure(),
		Humidity:      v.Humidity(),
		WindSpeed:     v.WindSpeed(),
		WindDirection: v.WindDirection(),
		WindGust:      v.WindGust(),
		Cloudiness:    v.Cloudiness(),
		Visibility:    v.Visibility(),
		Sunrise:       v.SunriseTime(),
		Sunset:        v.SunsetTime(),
		UpdatedTime:   v.LastTimeUpdated(),
		UpdatedDate:   v.LastDateUpdated(),
	}
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	st := s.deps.App.State()

	resp := stateResponse{
		Location: st.Location,
		Phase:    st.Location.Phase(),
		Weather: weatherResponse{
			LastKnownCoordinates: st.Weather.LastKnownCoordinates,
			IsFetching:           st.Weather.IsFetching,
			Retry:                weather.RetryAffordance(st.Weather),
			Alert:                st.Weather.Alert,
			ShowStories:          st.Weather.ShowStories,
		},
	}
	if st.Weather.Weather != nil {
		resp.Weather.Current = newWeatherView(domain.NewWeatherView(*st.Weather.Weather, s.deps.TimeZone))
	}
	if e := st.Weather.Err; e != nil {
		resp.Weather.Error = e.Error()
		resp.Weather.ErrorKind = e.Kind.String()
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthorization(w http.ResponseWriter, _ *http.Request) {
	s.deps.App.Send(app.LocationAction{Action: location.RequestAuthorization{}})
	accepted(w, "location/RequestAuthorization")
}

func (s *Server) handleRetry(w http.ResponseWriter, _ *http.Request) {
	aff := weather.RetryAffordance(s.deps.App.State().Weather)
	s.deps.App.Send(app.WeatherAction{Action: weather.Retry{}})
	sharedobs.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "retry": string(aff)})
}

func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	resp, err := weather.ParseAlertResponse(r.PathValue("response"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.deps.App.State().Weather.Alert == nil {
		writeError(w, http.StatusConflict, "no alert is being presented")
		return
	}
	s.deps.App.Send(app.WeatherAction{Action: weather.AlertResponded{Response: resp}})
	accepted(w, "weather/AlertResponded")
}

func (s *Server) handleOpenStories(w http.ResponseWriter, _ *http.Request) {
	current := s.deps.App.State().Weather.Weather
	if current == nil || current.LocationName() == "" {
		writeError(w, http.StatusConflict, "no location name has loaded yet")
		return
	}

	sess := s.deps.Stories.Open(current.LocationName())
	s.deps.App.Send(app.WeatherAction{Action: weather.NavigateToStories{Show: true}})
	s.logger.Info("stories opened", "city", current.LocationName())
	sharedobs.WriteJSON(w, http.StatusCreated, sess.State())
}

func (s *Server) handleGetStories(w http.ResponseWriter, _ *http.Request) {
	sess := s.deps.Stories.Current()
	if sess == nil {
		writeError(w, http.StatusNotFound, "stories are not open")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleCloseStories(w http.ResponseWriter, _ *http.Request) {
	if !s.deps.Stories.Close() {
		writeError(w, http.StatusNotFound, "stories are not open")
		return
	}
	s.deps.App.Send(app.WeatherAction{Action: weather.NavigateToStories{Show: false}})
	w.WriteHeader(http.StatusNoContent)
}

var storyActions = map[string]stories.Action{
	"next":          stories.Next{},
	"previous":      stories.Previous{},
	"dismiss-error": stories.DismissError{},
	"reload":        stories.Fetch{},
}

func (s *Server) handleStoriesAction(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("action")
	action, ok := storyActions[name]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown stories action "+name)
		return
	}
	sess := s.deps.Stories.Current()
	if sess == nil {
		writeError(w, http.StatusNotFound, "stories are not open")
		return
	}
	sess.Send(action)
	accepted(w, "stories/"+name)
}
