// Package uiautomator2 implements the search device contract over a UIAutomator2 server.
package uiautomator2

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/devicelab-dev/scrollseek/pkg/core"
	"github.com/devicelab-dev/scrollseek/pkg/logger"
	"github.com/devicelab-dev/scrollseek/pkg/search"
	"github.com/devicelab-dev/scrollseek/pkg/uiautomator2"
)

// DefaultGestureInterval is the minimum spacing between two gestures.
const DefaultGestureInterval = 150 * time.Millisecond

// Options configure a Session.
type Options struct {
	// Container is the resource-id of the scrollable view. Empty picks the largest
	// scrollable element on screen.
	Container string

	// GestureInterval is the minimum spacing between gestures. Negative disables pacing.
	GestureInterval time.Duration
}

// UIA2Client defines the UIAutomator2 operations a Session needs.
// Implemented by uiautomator2.Client. Allows mocking in tests.
type UIA2Client interface {
	Source(ctx context.Context) (string, error)
	SwipeInArea(ctx context.Context, area uiautomator2.RectModel, direction string, percent float64, speed int) error
	Click(ctx context.Context, x, y int) error
	GetDeviceInfo(ctx context.Context) (*uiautomator2.DeviceInfo, error)
	Close() error
}

var (
	_ UIA2Client    = (*uiautomator2.Client)(nil)
	_ search.Device = (*Session)(nil)
)

// Session drives one view on one device.
type Session struct {
	client  UIA2Client
	opts    Options
	limiter *rate.Limiter
}

// New creates a Session over an already connected client.
func New(client UIA2Client, opts Options) *Session {
	interval := opts.GestureInterval
	if interval == 0 {
		interval = DefaultGestureInterval
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Session{
		client:  client,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Connect opens an automation session on the server at baseURL.
func Connect(ctx context.Context, baseURL string, opts Options) (*Session, error) {
	return Open(ctx, uiautomator2.NewClientURL(baseURL), opts)
}

// Open creates an automation session through client, e.g. one returned by
// device.StartUIAutomator2.
func Open(ctx context.Context, client *uiautomator2.Client, opts Options) (*Session, error) {
	ready, err := client.Status(ctx)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, core.ErrServerUnreachable.WithMessage(fmt.Sprintf("server at %s is not ready", client.BaseURL()))
	}
	if err := client.CreateSession(ctx, uiautomator2.Capabilities{PlatformName: "Android"}); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logger.Info("connected to %s (session %s)", client.BaseURL(), client.SessionID())

	s := New(client, opts)
	if info, err := s.Info(ctx); err != nil {
		logger.Warn("device info on %s: %v", client.BaseURL(), err)
	} else {
		logger.Info("device %s, Android %s, %dx%d", info.DeviceName, info.OSVersion, info.ScreenWidth, info.ScreenHeight)
	}
	return s, nil
}

// Close ends the automation session.
func (s *Session) Close() error {
	return s.client.Close()
}

// Info returns the platform details of the device.
func (s *Session) Info(ctx context.Context) (*core.PlatformInfo, error) {
	info, err := s.client.GetDeviceInfo(ctx)
	if err != nil {
		return nil, err
	}
	w, h, err := parseDisplaySize(info.RealDisplaySize)
	if err != nil {
		return nil, err
	}
	return &core.PlatformInfo{
		Platform:     "android",
		OSVersion:    info.PlatformVersion,
		DeviceName:   info.Manufacturer + " " + info.Model,
		DeviceID:     info.AndroidID,
		ScreenWidth:  w,
		ScreenHeight: h,
	}, nil
}

// parseDisplaySize parses "1080x2400".
func parseDisplaySize(size string) (int, int, error) {
	var w, h int
	if n, err := fmt.Sscanf(size, "%dx%d", &w, &h); err != nil || n != 2 || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("malformed display size %q", size)
	}
	return w, h, nil
}

func (s *Session) source(ctx context.Context) ([]*ParsedElement, error) {
	xml, err := s.client.Source(ctx)
	if err != nil {
		return nil, err
	}
	return ParsePageSource(xml)
}

// LocateContainer implements search.Device.
func (s *Session) LocateContainer(ctx context.Context) (search.Item, error) {
	elements, err := s.source(ctx)
	if err != nil {
		return search.Item{}, err
	}

	var container *ParsedElement
	if s.opts.Container != "" {
		container = FindByResourceID(elements, s.opts.Container)
	} else {
		container = FindLargestScrollable(elements)
	}
	if container == nil {
		what := "no scrollable element on screen"
		if s.opts.Container != "" {
			what = "no element with id " + s.opts.Container
		}
		return search.Item{}, core.ErrContainerNotFound.WithMessage(what)
	}

	info := toElementInfo(container)
	logger.Debug("container %s %s at %+v", container.ClassName, container.ResourceID, container.Bounds)
	return info, nil
}

// resolve finds the container again in a fresh page source: by resource-id when
// configured, otherwise by its position in the hierarchy.
func (s *Session) resolve(elements []*ParsedElement, container search.Item) *ParsedElement {
	if s.opts.Container != "" {
		return FindByResourceID(elements, s.opts.Container)
	}
	if elem := FindByPath(elements, container.ID); elem != nil && elem.Scrollable {
		return elem
	}
	return FindLargestScrollable(elements)
}

// VisibleChildren implements search.Device.
func (s *Session) VisibleChildren(ctx context.Context, container search.Item) ([]search.Item, error) {
	elements, err := s.source(ctx)
	if err != nil {
		return nil, err
	}
	c := s.resolve(elements, container)
	if c == nil {
		return nil, core.ErrContainerNotFound.WithMessage("container disappeared")
	}
	return WindowItems(c), nil
}

// Swipe implements search.Device. The gesture is confined to the container bounds.
func (s *Session) Swipe(ctx context.Context, container search.Item, g search.Gesture) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	b := container.Bounds
	area := uiautomator2.NewRect(b.X, b.Y, b.Width, b.Height)
	return s.client.SwipeInArea(ctx, area, g.Swipe(), g.Ratio, gestureSpeed(g, b))
}

// gestureSpeed converts the gesture duration into pixels per second. 0 lets the
// server pick its default speed.
func gestureSpeed(g search.Gesture, b core.Bounds) int {
	if g.Duration <= 0 {
		return 0
	}
	extent := b.Height
	if g.Axis == search.Horizontal {
		extent = b.Width
	}
	return int(float64(extent) * g.Ratio / g.Duration.Seconds())
}

// Tap implements search.Device.
func (s *Session) Tap(ctx context.Context, item search.Item) error {
	if item.Bounds.Empty() {
		return core.ErrElementNotFound.WithMessage(fmt.Sprintf("item %q has no on-screen bounds", item.Label()))
	}
	x, y := item.Bounds.Center()
	return s.client.Click(ctx, x, y)
}
