package uiautomator2

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestClick(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/appium/gestures/click") {
			t.Errorf("expected /appium/gestures/click, got %s", r.URL.Path)
		}

		var req ClickRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Offset == nil || req.Offset.X != 100 || req.Offset.Y != 200 {
			t.Errorf("unexpected offset: %+v", req.Offset)
		}
		writeJSON(w, map[string]interface{}{})
	})
	defer server.Close()

	if err := client.Click(context.Background(), 100, 200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSwipeInArea(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/appium/gestures/swipe") {
			t.Errorf("expected /appium/gestures/swipe, got %s", r.URL.Path)
		}

		var req SwipeRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Area == nil || req.Area.Left != 0 || req.Area.Top != 300 || req.Area.Width != 1080 || req.Area.Height != 900 {
			t.Errorf("unexpected area: %+v", req.Area)
		}
		if req.Direction != "up" || req.Percent != 0.5 || req.Speed != 2000 {
			t.Errorf("unexpected request: %+v", req)
		}
		writeJSON(w, map[string]interface{}{})
	})
	defer server.Close()

	err := client.SwipeInArea(context.Background(), NewRect(0, 300, 1080, 900), DirectionUp, 0.5, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGestureValidation(t *testing.T) {
	client := newErrorTestClient()
	ctx := context.Background()
	area := NewRect(0, 0, 100, 100)

	tests := []struct {
		name      string
		direction string
		percent   float64
	}{
		{"bad direction", "sideways", 0.5},
		{"zero percent", DirectionUp, 0},
		{"percent above one", DirectionLeft, 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := client.SwipeInArea(ctx, area, tt.direction, tt.percent, 0); err == nil {
				t.Error("expected SwipeInArea validation error")
			}
		})
	}
}
