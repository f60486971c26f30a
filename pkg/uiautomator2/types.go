// Package uiautomator2 is an HTTP client for the UIAutomator2 server: session, page
// source, device info and the swipe and click gestures used to move pickers.
package uiautomator2

// Capabilities for session creation.
type Capabilities struct {
	PlatformName string `json:"platformName,omitempty"`
	DeviceName   string `json:"deviceName,omitempty"`
}

// SessionRequest for creating a session.
type SessionRequest struct {
	Capabilities Capabilities `json:"capabilities"`
}

// PointModel represents coordinates.
type PointModel struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RectModel represents a rectangle for scroll/swipe area operations.
// UIAutomator2 gesture APIs expect left/top/width/height format.
type RectModel struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRect creates a RectModel from x, y, width, height values.
func NewRect(x, y, width, height int) RectModel {
	return RectModel{
		Left:   x,
		Top:    y,
		Width:  width,
		Height: height,
	}
}

// ClickRequest for tap gestures.
type ClickRequest struct {
	Offset *PointModel `json:"offset,omitempty"`
}

// SwipeRequest for swipe and scroll gestures.
type SwipeRequest struct {
	Area      *RectModel `json:"area,omitempty"`
	Direction string     `json:"direction"` // up, down, left, right
	Percent   float64    `json:"percent"`   // 0.0 - 1.0
	Speed     int        `json:"speed,omitempty"`
}

// DeviceInfo from device info endpoint.
type DeviceInfo struct {
	AndroidID       string `json:"androidId"`
	Manufacturer    string `json:"manufacturer"`
	Model           string `json:"model"`
	Brand           string `json:"brand"`
	APIVersion      string `json:"apiVersion"`
	PlatformVersion string `json:"platformVersion"`
	RealDisplaySize string `json:"realDisplaySize"`
	DisplayDensity  int    `json:"displayDensity"`
}

// Swipe/scroll directions.
const (
	DirectionUp    = "up"
	DirectionDown  = "down"
	DirectionLeft  = "left"
	DirectionRight = "right"
)
