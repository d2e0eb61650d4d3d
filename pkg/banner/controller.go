package banner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/neontemple/temple-site/internal/event_bus"
	"github.com/neontemple/temple-site/pkg/coterie"
	"github.com/neontemple/temple-site/pkg/render"
	log "github.com/sirupsen/logrus"
)

const DefaultInterval = 6 * time.Second

// A pause nobody ends lapses after this many intervals.
const pauseIntervals = 2

var ErrIndexOutOfRange = errors.New("slide index out of range")

type State string

const (
	StateInactive State = "inactive"
	StateStatic   State = "static"
	StateRotating State = "rotating"
)

type Slide struct {
	Announcement coterie.Announcement `json:"announcement"`
	Index        int                  `json:"index"`
	Count        int                  `json:"count"`
}

// FeaturedSource supplies the announcements shown in the banner.
type FeaturedSource interface {
	GetFeaturedAnnouncements(ctx context.Context) ([]coterie.Announcement, error)
}

// Counter is satisfied by prometheus.Counter.
type Counter interface {
	Inc()
}

// Controller rotates through the featured announcements. With two or more
// items a single timer advances the index; hovering suspends rotation
// without touching the index. While hovering the same timer slot holds the
// pause lease, which ends the pause when it fires.
type Controller struct {
	mu        sync.Mutex
	scheduler Scheduler
	interval  time.Duration
	publisher event_bus.Publisher
	rotations Counter

	items    []coterie.Announcement
	index    int
	hovering bool
	cancel   func()
	// timerID identifies the live timer; ticks from cancelled timers that are
	// already in flight carry an older id and are dropped.
	timerID uint64
}

func NewController(scheduler Scheduler, interval time.Duration, publisher event_bus.Publisher) *Controller {
	if scheduler == nil {
		scheduler = TickerScheduler{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{
		scheduler: scheduler,
		interval:  interval,
		publisher: publisher,
	}
}

// SetRotationCounter counts every slide change.
func (c *Controller) SetRotationCounter(counter Counter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotations = counter
}

// SetItems replaces the featured list and starts over at the first item.
func (c *Controller) SetItems(items []coterie.Announcement) {
	c.mu.Lock()
	c.stopLocked()
	c.items = append([]coterie.Announcement(nil), items...)
	c.index = 0
	c.startLocked()
	slide, ok := c.slideLocked()
	c.mu.Unlock()

	if ok {
		c.notify(slide, false)
	}
}

// Refresh reloads the featured list. A failed fetch keeps the current list.
func (c *Controller) Refresh(ctx context.Context, source FeaturedSource) error {
	items, err := source.GetFeaturedAnnouncements(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh featured announcements: %w", err)
	}
	if c.publisher != nil {
		err := c.publisher.Publish(event_bus.NewEvent(ctx, event_bus.AnnouncementsLoadedType, event_bus.AnnouncementsLoaded{Announcements: items}))
		if err != nil {
			log.Warnf("banner: failed to publish featured announcements: %v", err)
		}
	}
	if c.updateInPlace(items) {
		log.Tracef("banner: featured list unchanged (%d items)", len(items))
		return nil
	}
	c.SetItems(items)
	log.Debugf("banner: %d featured announcements", len(items))
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Current returns the slide on display, or false when there is nothing to show.
func (c *Controller) Current() (Slide, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slideLocked()
}

// View adapts the current slide for the page layout.
func (c *Controller) View() *render.BannerView {
	slide, ok := c.Current()
	if !ok {
		return nil
	}
	return render.NewBannerView(slide.Announcement, slide.Index, slide.Count)
}

// Running reports whether a rotation timer is live.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil && !c.hovering
}

// Paused reports whether a hover is holding the current slide.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hovering
}

// GoTo shows slide i at once and restarts the rotation from zero elapsed.
// While hovering it renews the pause instead.
func (c *Controller) GoTo(i int) error {
	c.mu.Lock()
	if i < 0 || i >= len(c.items) {
		c.mu.Unlock()
		return ErrIndexOutOfRange
	}
	c.index = i
	c.startLocked()
	slide, _ := c.slideLocked()
	c.mu.Unlock()

	c.notify(slide, true)
	return nil
}

func (c *Controller) Next() error {
	return c.step(1)
}

func (c *Controller) Prev() error {
	return c.step(-1)
}

// PointerEnter suspends rotation. The index is kept. The pause lapses after
// pauseIntervals intervals unless PointerLeave comes first.
func (c *Controller) PointerEnter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hovering = true
	c.startLocked()
}

// PointerLeave resumes rotation.
func (c *Controller) PointerLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hovering = false
	c.startLocked()
}

// Stop cancels the timer for good, e.g. on shutdown.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) step(delta int) error {
	c.mu.Lock()
	n := len(c.items)
	if n == 0 {
		c.mu.Unlock()
		return ErrIndexOutOfRange
	}
	next := ((c.index+delta)%n + n) % n
	c.mu.Unlock()
	return c.GoTo(next)
}

func (c *Controller) tick(id uint64) {
	c.mu.Lock()
	if id != c.timerID || c.cancel == nil || len(c.items) < 2 {
		c.mu.Unlock()
		return
	}
	if c.hovering {
		log.Debug("banner: pause lapsed, resuming rotation")
		c.hovering = false
		c.startLocked()
		c.mu.Unlock()
		return
	}
	c.index = (c.index + 1) % len(c.items)
	slide, _ := c.slideLocked()
	c.mu.Unlock()

	c.notify(slide, true)
}

// startLocked cancels any live timer before starting a new one. While
// hovering the new timer is the pause lease.
func (c *Controller) startLocked() {
	c.stopLocked()
	if len(c.items) < 2 {
		return
	}
	d := c.interval
	if c.hovering {
		d = pauseIntervals * c.interval
	}
	c.timerID++
	id := c.timerID
	c.cancel = c.scheduler.Every(d, func() { c.tick(id) })
}

func (c *Controller) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) stateLocked() State {
	switch {
	case len(c.items) == 0:
		return StateInactive
	case len(c.items) == 1:
		return StateStatic
	default:
		return StateRotating
	}
}

func (c *Controller) slideLocked() (Slide, bool) {
	if len(c.items) == 0 {
		return Slide{}, false
	}
	return Slide{Announcement: c.items[c.index], Index: c.index, Count: len(c.items)}, true
}

// updateInPlace swaps in fresh copies of the same announcements without
// disturbing the index or the timer. It reports false when the list differs.
func (c *Controller) updateInPlace(items []coterie.Announcement) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(items) == 0 || len(items) != len(c.items) {
		return false
	}
	for i := range items {
		if items[i].ID != c.items[i].ID {
			return false
		}
	}
	c.items = append([]coterie.Announcement(nil), items...)
	return true
}

func (c *Controller) notify(slide Slide, rotated bool) {
	c.mu.Lock()
	rotations := c.rotations
	c.mu.Unlock()

	if rotated && rotations != nil {
		rotations.Inc()
	}
	if c.publisher != nil {
		err := c.publisher.Publish(event_bus.NewEvent(context.Background(), event_bus.BannerRotatedType, event_bus.BannerRotated{
			Index:          slide.Index,
			Count:          slide.Count,
			AnnouncementID: slide.Announcement.ID,
		}))
		if err != nil {
			log.Warnf("banner: failed to publish rotation: %v", err)
		}
	}
}
