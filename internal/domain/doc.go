// Package domain models the values the weather app moves between its
// collaborators and state machines.
//
// # Upstream Data
//
// Current conditions come from the OpenWeather "current weather" endpoint:
//
//	GET /data/2.5/weather?lat={lat}&lon={lon}&appid={key}&units=metric
//
// Every field in the response is optional. The provider drops fields it has no
// measurement for (gust is the common one), so the wire shape [WeatherResponseDTO]
// uses pointers throughout and [WeatherResponseDTO.ToDomain] never substitutes
// defaults: nil on the wire stays nil in [Weather].
//
// Unix instants (sunrise, sunset, dt) are decoded as int32 seconds. Values
// outside the 32-bit range fail decoding rather than being truncated.
//
// # Presentation
//
// [WeatherView] renders a Weather for display: decimal values keep at least one
// fractional digit ("18.0"), wind direction is an 8-point compass bucket
// (N, NE, E, SE, S, SW, W, NW) centred on each heading, and instants are
// formatted as 24-hour "HH:mm" in the location passed to [NewWeatherView].
// Absent fields render as "Unknown ..." placeholders.
//
// # Errors
//
// [WeatherError] is held in weather state rather than only returned, so the UI
// can pick a retry affordance from its [WeatherErrorKind]. [LocationError]
// mirrors the failure modes of a device location fix.
package domain
