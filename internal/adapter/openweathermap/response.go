package openweathermap

import (
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/weather-bot/internal/domain"
)

// OpenWeatherMap current-weather response types. Pointer fields distinguish
// a missing value from a zero value. Measurements stay json.Number so the
// service's own text is what gets shown.

type response struct {
	Main    *mainBlock  `json:"main"`
	Weather []condition `json:"weather"`
	Wind    *windBlock  `json:"wind"`
	Sys     *sysBlock   `json:"sys"`
}

type mainBlock struct {
	Temp     *json.Number `json:"temp"`
	Humidity *json.Number `json:"humidity"`
}

type condition struct {
	Main *string `json:"main"`
}

type windBlock struct {
	Speed *json.Number `json:"speed"`
}

type sysBlock struct {
	Sunrise *int64 `json:"sunrise"`
	Sunset  *int64 `json:"sunset"`
}

func (r response) reading() (domain.WeatherReading, error) {
	switch {
	case r.Main == nil:
		return missing("main")
	case r.Main.Temp == nil:
		return missing("main.temp")
	case r.Main.Humidity == nil:
		return missing("main.humidity")
	case len(r.Weather) == 0 || r.Weather[0].Main == nil:
		return missing("weather[0].main")
	case r.Wind == nil:
		return missing("wind")
	case r.Wind.Speed == nil:
		return missing("wind.speed")
	case r.Sys == nil:
		return missing("sys")
	case r.Sys.Sunrise == nil:
		return missing("sys.sunrise")
	case r.Sys.Sunset == nil:
		return missing("sys.sunset")
	}

	for _, m := range []struct {
		field string
		n     json.Number
	}{
		{"main.temp", *r.Main.Temp},
		{"main.humidity", *r.Main.Humidity},
		{"wind.speed", *r.Wind.Speed},
	} {
		if _, err := m.n.Float64(); err != nil {
			return domain.WeatherReading{}, fmt.Errorf("%w: %s is not a number", domain.ErrMalformedResponse, m.field)
		}
	}

	return domain.WeatherReading{
		Temperature: *r.Main.Temp,
		Humidity:    *r.Main.Humidity,
		Sky:         *r.Weather[0].Main,
		WindSpeed:   *r.Wind.Speed,
		Sunrise:     *r.Sys.Sunrise,
		Sunset:      *r.Sys.Sunset,
	}, nil
}

func missing(field string) (domain.WeatherReading, error) {
	return domain.WeatherReading{}, fmt.Errorf("%w: missing %s", domain.ErrMalformedResponse, field)
}
