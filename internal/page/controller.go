package page

import (
	stderrors "errors"
	"io"
	"sync"

	"github.com/rohankatakam/codefolio/internal/chart"
	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/rohankatakam/codefolio/internal/selection"
	"github.com/rohankatakam/codefolio/internal/temporal"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Kind names an interaction
type Kind string

const (
	KindProgress   Kind = "progress"
	KindBrush      Kind = "brush"
	KindBrushClear Kind = "brush-clear"
	KindHover      Kind = "hover"
	KindLeave      Kind = "leave"
	// KindSnapshot is reported by Snapshot; it cannot be dispatched
	KindSnapshot Kind = "snapshot"
)

// ErrThrottled is returned when an event arrives faster than the configured
// rate. The state is left untouched.
var ErrThrottled = stderrors.New("interaction throttled")

// Event is one user interaction
type Event struct {
	Kind     Kind            `json:"kind"`
	Progress float64         `json:"progress,omitempty"`
	Brush    *selection.Rect `json:"brush,omitempty"`
	CommitID string          `json:"commit_id,omitempty"`
}

// Handler applies an event to the controller's state
type Handler func(c *Controller, ev Event) error

// Observer is notified with the update produced by an event
type Observer func(u *Update)

// Options configures a controller
type Options struct {
	Layout chart.Layout
	// ThrottlePerSecond limits progress and brush events; 0 disables it
	ThrottlePerSecond float64
	Burst             int
	InitialProgress   float64
	Logger            *logrus.Logger
}

// Controller owns one view's State. It is not safe for concurrent use
// except for Observe, which may be called from any goroutine.
type Controller struct {
	state    State
	renderer *chart.Renderer
	handlers map[Kind]Handler
	limiter  *rate.Limiter
	logger   *logrus.Logger

	mu        sync.RWMutex
	observers map[Kind][]Observer
}

var defaultHandlers = map[Kind]Handler{
	KindProgress:   handleProgress,
	KindBrush:      handleBrush,
	KindBrushClear: handleBrushClear,
	KindHover:      handleHover,
	KindLeave:      handleLeave,
}

// throttled lists the kinds that re-run the filter and render pipeline
var throttled = map[Kind]bool{
	KindProgress: true,
	KindBrush:    true,
}

// New builds a controller over commits and renders the initial view at
// opts.InitialProgress.
func New(commits []models.Commit, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	c := &Controller{
		state: State{
			Commits: commits,
			Filter:  temporal.NewTimeFilter(commits),
		},
		renderer:  chart.NewRenderer(opts.Layout, commits),
		handlers:  make(map[Kind]Handler, len(defaultHandlers)),
		logger:    logger,
		observers: make(map[Kind][]Observer),
	}
	for k, h := range defaultHandlers {
		c.handlers[k] = h
	}
	if opts.ThrottlePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.ThrottlePerSecond), burst)
	}

	c.state.Filtered = c.state.Filter.SetProgress(opts.InitialProgress)
	c.refresh()
	return c
}

// Handle replaces the handler for an interaction kind
func (c *Controller) Handle(kind Kind, h Handler) {
	c.handlers[kind] = h
}

// Observe registers fn to run after every event of the given kind
func (c *Controller) Observe(kind Kind, fn Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers[kind] = append(c.observers[kind], fn)
}

// Dispatch applies an event and returns the resulting update
func (c *Controller) Dispatch(ev Event) (*Update, error) {
	h, ok := c.handlers[ev.Kind]
	if !ok {
		return nil, errors.ValidationErrorf("unknown interaction %q", ev.Kind)
	}
	if c.limiter != nil && throttled[ev.Kind] && !c.limiter.Allow() {
		c.logger.WithField("kind", ev.Kind).Debug("Dropping throttled interaction")
		return nil, ErrThrottled
	}

	if err := h(c, ev); err != nil {
		return nil, err
	}

	u := c.state.snapshot(ev.Kind)

	c.mu.RLock()
	obs := append([]Observer(nil), c.observers[ev.Kind]...)
	c.mu.RUnlock()
	for _, fn := range obs {
		fn(u)
	}
	return u, nil
}

// Snapshot returns the current view without changing it
func (c *Controller) Snapshot() *Update {
	return c.state.snapshot(KindSnapshot)
}

// State returns a copy of the current state
func (c *Controller) State() State {
	return c.state
}

// refresh recomputes the selection for the current brush and re-renders
func (c *Controller) refresh() {
	s := &c.state
	proj := c.renderer.Project(s.Filtered)
	s.Selected = selection.Select(s.Filtered, proj, s.Brush)
	s.Frame = c.renderer.Render(s.Filtered, selection.IDs(s.Selected))

	if s.Hovered != nil && !containsID(s.Filtered, s.Hovered.ID) {
		s.Hovered = nil
	}
}

func handleProgress(c *Controller, ev Event) error {
	c.state.Filtered = c.state.Filter.SetProgress(ev.Progress)
	c.refresh()
	return nil
}

func handleBrush(c *Controller, ev Event) error {
	if ev.Brush == nil {
		return errors.ValidationErrorf("brush event without a rectangle")
	}
	r := ev.Brush.Normalize()
	c.state.Brush = &r
	c.refresh()
	return nil
}

func handleBrushClear(c *Controller, ev Event) error {
	c.state.Brush = nil
	c.refresh()
	return nil
}

func handleHover(c *Controller, ev Event) error {
	for i := range c.state.Filtered {
		if c.state.Filtered[i].ID == ev.CommitID {
			hovered := c.state.Filtered[i]
			c.state.Hovered = &hovered
			return nil
		}
	}
	c.state.Hovered = nil
	return errors.ValidationErrorf("no visible commit %q", ev.CommitID)
}

func handleLeave(c *Controller, ev Event) error {
	c.state.Hovered = nil
	return nil
}

func containsID(commits []models.Commit, id string) bool {
	for _, c := range commits {
		if c.ID == id {
			return true
		}
	}
	return false
}
