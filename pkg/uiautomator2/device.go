package uiautomator2

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Source returns the page source XML of the current screen.
func (c *Client) Source(ctx context.Context) (string, error) {
	if err := c.requireSession(); err != nil {
		return "", err
	}
	data, err := c.request(ctx, http.MethodGet, c.sessionPath("/source"), nil)
	if err != nil {
		return "", err
	}
	value := gjson.GetBytes(data, "value")
	if value.Type != gjson.String {
		return "", fmt.Errorf("unexpected source response")
	}
	return value.Str, nil
}

// GetDeviceInfo returns information about the device.
func (c *Client) GetDeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	data, err := c.request(ctx, http.MethodGet, c.sessionPath("/appium/device/info"), nil)
	if err != nil {
		return nil, err
	}

	value := gjson.GetBytes(data, "value")
	if !value.IsObject() {
		return nil, fmt.Errorf("unexpected device info response")
	}
	var info DeviceInfo
	if err := json.Unmarshal([]byte(value.Raw), &info); err != nil {
		return nil, err
	}
	return &info, nil
}
