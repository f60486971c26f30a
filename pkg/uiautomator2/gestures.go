package uiautomator2

import (
	"context"
	"fmt"
	"net/http"
)

// Click taps at screen coordinates.
func (c *Client) Click(ctx context.Context, x, y int) error {
	req := ClickRequest{Offset: &PointModel{X: x, Y: y}}
	_, err := c.request(ctx, http.MethodPost, c.sessionPath("/appium/gestures/click"), req)
	return err
}

// SwipeInArea performs a swipe inside area. percent is the fraction of the area the
// finger travels; speed is in pixels per second (0 = server default).
func (c *Client) SwipeInArea(ctx context.Context, area RectModel, direction string, percent float64, speed int) error {
	if err := validGesture(direction, percent); err != nil {
		return err
	}
	req := SwipeRequest{
		Area:      &area,
		Direction: direction,
		Percent:   percent,
		Speed:     speed,
	}
	_, err := c.request(ctx, http.MethodPost, c.sessionPath("/appium/gestures/swipe"), req)
	return err
}

func validGesture(direction string, percent float64) error {
	switch direction {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
	default:
		return fmt.Errorf("invalid gesture direction %q", direction)
	}
	if percent <= 0 || percent > 1 {
		return fmt.Errorf("gesture percent must be in (0, 1], got %v", percent)
	}
	return nil
}
