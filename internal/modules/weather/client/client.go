// Package client talks to the weatherapi.com current conditions endpoint.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/weather/types"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	query      string
}

func New(baseURL, apiKey, query string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		query:      query,
	}
}

type currentResponse struct {
	Current struct {
		LastUpdated string  `json:"last_updated"`
		TempF       float64 `json:"temp_f"`
		Humidity    float64 `json:"humidity"`
		Condition   struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
	} `json:"current"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Current(ctx context.Context) (types.Conditions, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return types.Conditions{}, fmt.Errorf("weather url: %w", err)
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	q.Set("q", c.query)
	q.Set("aqi", "no")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return types.Conditions{}, fmt.Errorf("weather request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.Conditions{}, fmt.Errorf("weather request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return types.Conditions{}, fmt.Errorf("read weather response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
			return types.Conditions{}, fmt.Errorf("weather api status %d: %s", resp.StatusCode, ae.Error.Message)
		}
		return types.Conditions{}, fmt.Errorf("weather api status %d", resp.StatusCode)
	}

	var cr currentResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return types.Conditions{}, fmt.Errorf("decode weather response: %w", err)
	}
	return types.Conditions{
		TemperatureF: cr.Current.TempF,
		HumidityPct:  cr.Current.Humidity,
		Condition:    cr.Current.Condition.Text,
		Icon:         absoluteIcon(cr.Current.Condition.Icon),
		LastUpdate:   cr.Current.LastUpdated,
	}, nil
}

// absoluteIcon turns the protocol-relative icon URL the API returns into https.
func absoluteIcon(icon string) string {
	if strings.HasPrefix(icon, "//") {
		return "https:" + icon
	}
	return icon
}
