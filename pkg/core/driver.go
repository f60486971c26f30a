// Package core holds the element model, search status and error taxonomy shared by
// the search engine and the device drivers.
package core

// ElementInfo represents information about a UI element
type ElementInfo struct {
	ID                 string            `json:"id,omitempty"`
	Text               string            `json:"text,omitempty"`
	Bounds             Bounds            `json:"bounds"`
	Visible            bool              `json:"visible"`
	Enabled            bool              `json:"enabled"`
	Focused            bool              `json:"focused,omitempty"`
	Checked            bool              `json:"checked,omitempty"`
	Selected           bool              `json:"selected,omitempty"`
	Class              string            `json:"class,omitempty"`
	AccessibilityLabel string            `json:"accessibilityLabel,omitempty"`
	Attributes         map[string]string `json:"attributes,omitempty"`
}

// Label returns the text of the element, falling back to its accessibility label.
func (e ElementInfo) Label() string {
	if e.Text != "" {
		return e.Text
	}
	return e.AccessibilityLabel
}

// Bounds represents element position and size
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Contains checks if a point is within the bounds
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Empty reports whether the bounds have no area.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Area returns width * height.
func (b Bounds) Area() int {
	return b.Width * b.Height
}

// PlatformInfo contains device and platform details
type PlatformInfo struct {
	Platform     string `json:"platform"`               // ios, android
	OSVersion    string `json:"osVersion"`              // e.g., "17.0", "14"
	DeviceName   string `json:"deviceName"`             // e.g., "iPhone 15 Pro", "Pixel 8"
	DeviceID     string `json:"deviceId"`               // Unique device identifier
	IsSimulator  bool   `json:"isSimulator"`            // Simulator/emulator vs real device
	ScreenWidth  int    `json:"screenWidth,omitempty"`  // Screen width in pixels
	ScreenHeight int    `json:"screenHeight,omitempty"` // Screen height in pixels
}
