package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/stripd/internal/registry"
	"github.com/desertthunder/stripd/internal/shared"
)

// DeviceClient is a typed client for the configuration API.
type DeviceClient struct {
	api *APIService
}

// NewDeviceClient creates a [DeviceClient] for the device at baseURL.
func NewDeviceClient(baseURL string, client *http.Client) *DeviceClient {
	return &DeviceClient{api: NewAPIService(strings.TrimRight(baseURL, "/"), client)}
}

// BaseURL returns the device address.
func (c *DeviceClient) BaseURL() string {
	return c.api.BaseURL()
}

// Now returns the device's render clock in milliseconds.
func (c *DeviceClient) Now(ctx context.Context) (uint64, error) {
	resp, err := c.api.Get(ctx, "/now")
	if err != nil {
		return 0, err
	}
	if err := checkResponse(resp); err != nil {
		return 0, err
	}

	ms, err := strconv.ParseUint(strings.TrimSpace(string(resp.Body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unexpected /now body %q", shared.ErrAPIRequest, resp.Body)
	}
	return ms, nil
}

// DataRaw returns the configuration exactly as served.
func (c *DeviceClient) DataRaw(ctx context.Context) ([]byte, error) {
	resp, err := c.api.Get(ctx, "/data")
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Data returns the device's current configuration.
func (c *DeviceClient) Data(ctx context.Context) (registry.Snapshot, error) {
	body, err := c.DataRaw(ctx)
	if err != nil {
		return registry.Snapshot{}, err
	}
	return registry.Unmarshal(body)
}

// ReplaceRaw posts an already serialized configuration and reports whether the device persisted it.
func (c *DeviceClient) ReplaceRaw(ctx context.Context, data []byte) (bool, error) {
	resp, err := c.api.Post(ctx, "/data", data)
	if err != nil {
		return false, err
	}
	if err := checkResponse(resp); err != nil {
		return false, err
	}

	var result struct {
		Status    string `json:"status"`
		Persisted bool   `json:"persisted"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return false, fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return result.Persisted, nil
}

// Replace sends snap as the device's new configuration.
func (c *DeviceClient) Replace(ctx context.Context, snap registry.Snapshot) (bool, error) {
	data, err := registry.Marshal(snap)
	if err != nil {
		return false, err
	}
	return c.ReplaceRaw(ctx, data)
}

// checkResponse turns a non-2xx response into an error wrapping [shared.ErrAPIRequest].
func checkResponse(resp *APIResponse) error {
	if resp.OK() {
		return nil
	}
	msg := http.StatusText(resp.StatusCode)
	if obj, ok := resp.JSONData.(map[string]any); ok {
		if e, ok := obj["error"].(string); ok && e != "" {
			msg = e
		}
	}
	return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
}
