package domain

import "time"

// WeatherResponseDTO is the literal JSON shape of the current-weather endpoint.
type WeatherResponseDTO struct {
	Coord      *CoordDTO             `json:"coord"`
	Weather    []WeatherConditionDTO `json:"weather"`
	Main       *MainDTO              `json:"main"`
	Wind       *WindDTO              `json:"wind"`
	Clouds     *CloudsDTO            `json:"clouds"`
	Sys        *SysDTO               `json:"sys"`
	Name       *string               `json:"name"`
	Visibility *int                  `json:"visibility"`
	Timestamp  *int32                `json:"dt"` // unix seconds
}

// CoordDTO is the "coord" object.
type CoordDTO struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// WeatherConditionDTO is one entry of the "weather" array.
type WeatherConditionDTO struct {
	ID          *int    `json:"id"`
	Main        *string `json:"main"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

// MainDTO is the "main" object: temperatures, pressure and humidity.
type MainDTO struct {
	Temp      *float64 `json:"temp"`
	FeelsLike *float64 `json:"feels_like"`
	TempMin   *float64 `json:"temp_min"`
	TempMax   *float64 `json:"temp_max"`
	Pressure  *int     `json:"pressure"`
	Humidity  *int     `json:"humidity"`
}

// WindDTO is the "wind" object.
type WindDTO struct {
	Speed *float64 `json:"speed"`
	Deg   *int     `json:"deg"`
	Gust  *float64 `json:"gust"`
}

// CloudsDTO is the "clouds" object.
type CloudsDTO struct {
	All *int `json:"all"` // cloudiness percentage
}

// SysDTO is the "sys" object: country and sun times.
type SysDTO struct {
	Country *string `json:"country"`
	Sunrise *int32  `json:"sunrise"`
	Sunset  *int32  `json:"sunset"`
}

// ToDomain maps the wire shape onto a Weather without defaulting any field.
func (d WeatherResponseDTO) ToDomain() Weather {
	var conditions []WeatherCondition
	if d.Weather != nil {
		conditions = make([]WeatherCondition, 0, len(d.Weather))
		for _, c := range d.Weather {
			conditions = append(conditions, WeatherCondition{
				ID:          c.ID,
				Main:        c.Main,
				Description: c.Description,
				Icon:        c.Icon,
			})
		}
	}

	w := Weather{
		Conditions: conditions,
		Name:       d.Name,
		Visibility: d.Visibility,
		ObservedAt: fromUnix(d.Timestamp),
	}
	if d.Coord != nil {
		w.Lat, w.Lon = d.Coord.Lat, d.Coord.Lon
	}
	if d.Main != nil {
		w.Temp = d.Main.Temp
		w.FeelsLike = d.Main.FeelsLike
		w.TempMin = d.Main.TempMin
		w.TempMax = d.Main.TempMax
		w.Pressure = d.Main.Pressure
		w.Humidity = d.Main.Humidity
	}
	if d.Wind != nil {
		w.WindSpeed, w.WindDeg, w.WindGust = d.Wind.Speed, d.Wind.Deg, d.Wind.Gust
	}
	if d.Clouds != nil {
		w.CloudsAll = d.Clouds.All
	}
	if d.Sys != nil {
		w.Country = d.Sys.Country
		w.Sunrise = fromUnix(d.Sys.Sunrise)
		w.Sunset = fromUnix(d.Sys.Sunset)
	}
	return w
}

func fromUnix(sec *int32) *time.Time {
	if sec == nil {
		return nil
	}
	t := time.Unix(int64(*sec), 0).UTC()
	return &t
}
