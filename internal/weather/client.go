// Package weather fetches the current weather used to flavour AI prompts.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the QWeather API host.
const DefaultBaseURL = "https://devapi.qweather.com"

const (
	nowPath        = "/v7/weather/now"
	successCode    = "200"
	requestTimeout = 10 * time.Second
)

// Sentinel errors.
var (
	// ErrMissingAPIKey is returned when WEATHER_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing WEATHER_API_KEY environment variable")

	// ErrBadCode is returned when the API answers with a non-success code.
	ErrBadCode = errors.New("weather api returned an error code")
)

// Reading is a current-conditions observation.
type Reading struct {
	Temp      string `json:"temp"`
	FeelsLike string `json:"feelsLike"`
	Text      string `json:"text"`
	Icon      string `json:"icon"`
	Humidity  string `json:"humidity"`
	WindDir   string `json:"windDir"`
	ObsTime   string `json:"obsTime,omitempty"`
}

// DefaultReading is used whenever live weather is unavailable.
func DefaultReading() Reading {
	return Reading{
		Temp:      "22",
		FeelsLike: "22",
		Text:      "Sunny",
		Icon:      "100",
		Humidity:  "50",
		WindDir:   "N",
	}
}

// Description is the short form sent to the AI, such as "Sunny, 22°C".
func (r Reading) Description() string {
	text := strings.TrimSpace(r.Text)
	if r.Temp == "" {
		return text
	}
	if text == "" {
		return r.Temp + "°C"
	}
	return fmt.Sprintf("%s, %s°C", text, r.Temp)
}

type nowResponse struct {
	Code string  `json:"code"`
	Now  Reading `json:"now"`
}

// Client calls the weather API.
type Client struct {
	apiKey string
	http   *resty.Client
}

// NewClient creates a Client. An empty baseURL uses DefaultBaseURL.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey: apiKey,
		http: resty.New().
			SetBaseURL(strings.TrimSuffix(baseURL, "/")).
			SetTimeout(requestTimeout).
			SetHeader("Accept", "application/json"),
	}
}

// Current returns the current weather for location, which is either a
// location id or "lon,lat".
func (c *Client) Current(ctx context.Context, location string) (Reading, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return Reading{}, ErrMissingAPIKey
	}

	var body nowResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"location": location,
			"key":      c.apiKey,
		}).
		SetResult(&body).
		Get(nowPath)
	if err != nil {
		return Reading{}, fmt.Errorf("fetching weather: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Reading{}, fmt.Errorf("fetching weather: unexpected status %d", resp.StatusCode())
	}
	if body.Code != successCode {
		return Reading{}, fmt.Errorf("%w: %q", ErrBadCode, body.Code)
	}
	return body.Now, nil
}
