package openweather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"plant-care-service/internal/platform/httpclient"
	"plant-care-service/internal/ports/weather"
)

const defaultBaseURL = "https://api.openweathermap.org"

var (
	ErrMissingAPIKey = errors.New("openweather api key missing")
	ErrUpstream      = errors.New("openweather upstream error")
)

// Client consulta el clima actual en OpenWeatherMap. Implementa
// weather.Provider.
type Client struct {
	http *httpclient.Client
}

func New(timeout time.Duration) *Client {
	c, _ := httpclient.NewWithBaseURL(defaultBaseURL, timeout)
	return &Client{http: c}
}

// NewWithHTTP permite inyectar el cliente HTTP (tests, base URL alterna).
func NewWithHTTP(hc *httpclient.Client) *Client {
	return &Client{http: hc}
}

// owmResponse es el subset de /data/2.5/weather que usa el motor.
type owmResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour   float64 `json:"1h"`
		ThreeHour float64 `json:"3h"`
	} `json:"rain"`
	Dt int64 `json:"dt"`
}

// Current trae las condiciones actuales en métrico para la ubicación.
func (c *Client) Current(ctx context.Context, apiKey string, loc weather.Location) (weather.Conditions, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return weather.Conditions{}, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	q.Set("appid", apiKey)
	q.Set("units", "metric")

	var out owmResponse
	if err := c.http.GetJSON(ctx, "/data/2.5/weather", q, &out); err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			return weather.Conditions{}, fmt.Errorf("%w: status=%d", ErrUpstream, httpErr.StatusCode)
		}
		return weather.Conditions{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	cond := weather.Conditions{
		TemperatureC: out.Main.Temp,
		HumidityPct:  out.Main.Humidity,
		PressureHPa:  out.Main.Pressure,
		WindSpeedMS:  out.Wind.Speed,
		// rain.1h es lo más cercano a "lluvia inminente" en el endpoint
		// de clima actual; con 3h se prorratea.
		PrecipForecastMM: out.Rain.OneHour,
		ObservedAt:       time.Unix(out.Dt, 0).UTC(),
	}
	if cond.PrecipForecastMM == 0 && out.Rain.ThreeHour > 0 {
		cond.PrecipForecastMM = out.Rain.ThreeHour / 3
	}
	if len(out.Weather) > 0 {
		cond.WeatherMain = out.Weather[0].Main
		cond.WeatherDesc = out.Weather[0].Description
	}
	if out.Dt == 0 {
		cond.ObservedAt = time.Now().UTC()
	}
	return cond, nil
}
