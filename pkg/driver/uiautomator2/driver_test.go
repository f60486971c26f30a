package uiautomator2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devicelab-dev/scrollseek/pkg/core"
	"github.com/devicelab-dev/scrollseek/pkg/search"
	"github.com/devicelab-dev/scrollseek/pkg/uiautomator2"
)

type swipeCall struct {
	area      uiautomator2.RectModel
	direction string
	percent   float64
	speed     int
}

// fakeClient serves a list of page sources, advancing one page per swipe.
type fakeClient struct {
	mu        sync.Mutex
	sources   []string
	page      int
	swipes    []swipeCall
	clicks    [][2]int
	swipeErr  error
	sourceErr error
	info      *uiautomator2.DeviceInfo
	closed    bool
}

func (f *fakeClient) Source(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sourceErr != nil {
		return "", f.sourceErr
	}
	return f.sources[f.page], nil
}

func (f *fakeClient) SwipeInArea(_ context.Context, area uiautomator2.RectModel, direction string, percent float64, speed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swipes = append(f.swipes, swipeCall{area, direction, percent, speed})
	if f.swipeErr != nil {
		return f.swipeErr
	}
	if direction == uiautomator2.DirectionUp && f.page < len(f.sources)-1 {
		f.page++
	}
	if direction == uiautomator2.DirectionDown && f.page > 0 {
		f.page--
	}
	return nil
}

func (f *fakeClient) Click(_ context.Context, x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks = append(f.clicks, [2]int{x, y})
	return nil
}

func (f *fakeClient) GetDeviceInfo(context.Context) (*uiautomator2.DeviceInfo, error) {
	if f.info == nil {
		return nil, errors.New("no info")
	}
	return f.info, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

// yearPage renders years from..from+4 as rows of 300px inside the list.
func yearPage(from int) string {
	var rows strings.Builder
	for i := 0; i < 5; i++ {
		top := 200 + i*300
		fmt.Fprintf(&rows, `<node text="%d" class="android.widget.TextView" bounds="[0,%d][1080,%d]" enabled="true" clickable="true"/>`,
			from+i, top, top+300)
	}
	return `<hierarchy><node class="android.widget.FrameLayout" bounds="[0,0][1080,1920]">` +
		`<node resource-id="com.app:id/years" class="android.widget.ListView" bounds="[0,200][1080,1700]" scrollable="true" enabled="true">` +
		rows.String() + `</node></node></hierarchy>`
}

func newFake(pages ...int) *fakeClient {
	f := &fakeClient{}
	for _, p := range pages {
		f.sources = append(f.sources, yearPage(p))
	}
	return f
}

func TestSessionLocateContainer(t *testing.T) {
	s := New(newFake(2000), Options{GestureInterval: -1})

	c, err := s.LocateContainer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Bounds != (core.Bounds{X: 0, Y: 200, Width: 1080, Height: 1500}) {
		t.Errorf("unexpected container bounds %+v", c.Bounds)
	}
	if c.Attributes["resource-id"] != "com.app:id/years" {
		t.Errorf("unexpected container %+v", c)
	}
}

func TestSessionLocateContainerByID(t *testing.T) {
	s := New(newFake(2000), Options{Container: "missing", GestureInterval: -1})

	_, err := s.LocateContainer(context.Background())
	if !errors.Is(err, core.ErrContainerNotFound) {
		t.Errorf("expected ErrContainerNotFound, got %v", err)
	}

	s = New(newFake(2000), Options{Container: "years", GestureInterval: -1})
	if _, err := s.LocateContainer(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSessionVisibleChildren(t *testing.T) {
	s := New(newFake(2000), Options{GestureInterval: -1})
	ctx := context.Background()

	c, _ := s.LocateContainer(ctx)
	items, err := s.VisibleChildren(ctx, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 5 || items[0].Text != "2000" || items[4].Text != "2004" {
		t.Errorf("unexpected window %+v", items)
	}
}

func TestSessionSourceError(t *testing.T) {
	f := newFake(2000)
	f.sourceErr = errors.New("socket closed")
	s := New(f, Options{GestureInterval: -1})

	if _, err := s.LocateContainer(context.Background()); err == nil {
		t.Error("expected LocateContainer error")
	}
	if _, err := s.VisibleChildren(context.Background(), search.Item{}); err == nil {
		t.Error("expected VisibleChildren error")
	}
}

func TestSessionSwipeConfinedToContainer(t *testing.T) {
	f := newFake(2000, 2005)
	s := New(f, Options{GestureInterval: -1})
	ctx := context.Background()

	c, _ := s.LocateContainer(ctx)
	err := s.Swipe(ctx, c, search.Gesture{Direction: search.Forward, Ratio: 0.5, Duration: 500 * time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.swipes) != 1 {
		t.Fatalf("expected 1 swipe, got %d", len(f.swipes))
	}
	got := f.swipes[0]
	if got.area != uiautomator2.NewRect(0, 200, 1080, 1500) {
		t.Errorf("unexpected area %+v", got.area)
	}
	if got.direction != "up" || got.percent != 0.5 {
		t.Errorf("unexpected swipe %+v", got)
	}
	if got.speed != 1500 {
		t.Errorf("expected speed 1500px/s, got %d", got.speed)
	}
}

func TestSessionSwipePacing(t *testing.T) {
	f := newFake(2000)
	s := New(f, Options{GestureInterval: 50 * time.Millisecond})
	ctx := context.Background()
	c, _ := s.LocateContainer(ctx)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := s.Swipe(ctx, c, search.Gesture{Direction: search.Backward, Ratio: 0.5}); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("expected gestures spaced by the limiter, took %v", elapsed)
	}
}

func TestSessionTap(t *testing.T) {
	f := newFake(2000)
	s := New(f, Options{GestureInterval: -1})

	err := s.Tap(context.Background(), search.Item{Bounds: core.Bounds{X: 0, Y: 500, Width: 1080, Height: 300}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.clicks) != 1 || f.clicks[0] != [2]int{540, 650} {
		t.Errorf("unexpected clicks %v", f.clicks)
	}

	if err := s.Tap(context.Background(), search.Item{Text: "x"}); !errors.Is(err, core.ErrElementNotFound) {
		t.Errorf("expected ErrElementNotFound for empty bounds, got %v", err)
	}
}

func TestSessionInfo(t *testing.T) {
	f := newFake(2000)
	f.info = &uiautomator2.DeviceInfo{Manufacturer: "Google", Model: "Pixel 7", PlatformVersion: "14", RealDisplaySize: "1080x2400"}
	s := New(f, Options{})

	info, err := s.Info(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.DeviceName != "Google Pixel 7" || info.ScreenWidth != 1080 || info.ScreenHeight != 2400 {
		t.Errorf("unexpected info %+v", info)
	}

	if err := s.Close(); err != nil || !f.closed {
		t.Errorf("expected Close to close the client, err=%v", err)
	}
}

func TestSessionInfoMalformedDisplaySize(t *testing.T) {
	for _, size := range []string{"", "1080", "widexhigh", "0x2400"} {
		f := newFake(2000)
		f.info = &uiautomator2.DeviceInfo{Model: "Pixel 7", RealDisplaySize: size}

		if info, err := New(f, Options{}).Info(context.Background()); err == nil {
			t.Errorf("size %q: expected error, got %+v", size, info)
		}
	}
}

func TestGestureSpeed(t *testing.T) {
	b := core.Bounds{Width: 1000, Height: 2000}
	tests := []struct {
		g    search.Gesture
		want int
	}{
		{search.Gesture{Ratio: 0.5}, 0},
		{search.Gesture{Ratio: 0.5, Duration: time.Second}, 1000},
		{search.Gesture{Axis: search.Horizontal, Ratio: 1, Duration: 250 * time.Millisecond}, 4000},
	}
	for _, tt := range tests {
		if got := gestureSpeed(tt.g, b); got != tt.want {
			t.Errorf("gestureSpeed(%v) = %d, want %d", tt.g, got, tt.want)
		}
	}
}

func TestSessionDrivesSearch(t *testing.T) {
	f := newFake(2000, 2005, 2010, 2015)
	s := New(f, Options{GestureInterval: -1})

	searcher, err := search.New[int](s, search.Config[int]{
		Name:   "year",
		Decode: search.DecodeInt,
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := searcher.Search(context.Background(), search.NewTarget(2012, search.CompareInts), search.Forward)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value != 2012 || res.Gestures != 2 {
		t.Errorf("unexpected result %+v", res)
	}
	if len(f.clicks) != 1 || f.clicks[0] != [2]int{540, 950} {
		t.Errorf("expected one click on the 2012 row, got %v", f.clicks)
	}
}

func TestConnect(t *testing.T) {
	var infoRequests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/status":
			json.NewEncoder(w).Encode(map[string]interface{}{"value": map[string]interface{}{"ready": true}})
		case "/session":
			json.NewEncoder(w).Encode(map[string]interface{}{"sessionId": "s-1"})
		case "/session/s-1/source":
			json.NewEncoder(w).Encode(map[string]interface{}{"value": yearPage(1990)})
		case "/session/s-1/appium/device/info":
			infoRequests.Add(1)
			json.NewEncoder(w).Encode(map[string]interface{}{"value": map[string]interface{}{
				"manufacturer": "Google", "model": "Pixel 7", "realDisplaySize": "1080x2400",
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s, err := Connect(context.Background(), server.URL, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err := s.LocateContainer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items, err := s.VisibleChildren(context.Background(), c)
	if err != nil || len(items) != 5 {
		t.Errorf("unexpected window %v, %v", items, err)
	}
	if n := infoRequests.Load(); n != 1 {
		t.Errorf("expected device info to be read once at connect, got %d", n)
	}
}

func TestConnectNotReady(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"value": map[string]interface{}{"ready": false}})
	}))
	defer server.Close()

	_, err := Connect(context.Background(), server.URL, Options{})
	if !errors.Is(err, core.ErrServerUnreachable) {
		t.Errorf("expected ErrServerUnreachable, got %v", err)
	}
}
