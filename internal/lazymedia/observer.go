package lazymedia

import (
	"sync"
)

// Rect is the vertical extent of an element in page coordinates.
type Rect struct {
	Top    int
	Height int
}

// Bottom returns the first coordinate below the element. An element with no reserved height
// still occupies one row, so it can intersect at the viewport edges.
func (r Rect) Bottom() int {
	if r.Height <= 0 {
		return r.Top + 1
	}
	return r.Top + r.Height
}

// Entry is one intersection report for an observed element.
type Entry struct {
	Target         Rect
	IsIntersecting bool
}

// Subscription is the handle for one observed element. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// Observer delivers intersection entries for observed elements. Implementations deliver the
// current state once when observation starts and again whenever it changes.
type Observer interface {
	Observe(target Rect, callback func(Entry)) Subscription
}

// Viewport is an Observer for a vertically scrolling page. One Viewport is shared by every
// media instance on the page.
type Viewport struct {
	mu     sync.Mutex
	offset int
	height int
	margin int
	nextID int
	subs   map[int]*viewportSubscription
}

type viewportSubscription struct {
	viewport *Viewport
	id       int
	target   Rect
	callback func(Entry)
	last     bool
}

// NewViewport builds a viewport of the given height. rootMargin extends the observed area above
// and below the visible area so fetches start before elements scroll into view.
func NewViewport(height, rootMargin int) *Viewport {
	if rootMargin < 0 {
		rootMargin = 0
	}
	return &Viewport{
		height: height,
		margin: rootMargin,
		subs:   make(map[int]*viewportSubscription),
	}
}

// Observe starts watching target and immediately reports its current state.
func (v *Viewport) Observe(target Rect, callback func(Entry)) Subscription {
	v.mu.Lock()
	v.nextID++
	sub := &viewportSubscription{viewport: v, id: v.nextID, target: target, callback: callback}
	sub.last = v.intersects(target)
	v.subs[sub.id] = sub
	entry := Entry{Target: target, IsIntersecting: sub.last}
	v.mu.Unlock()

	callback(entry)
	return sub
}

// ScrollTo moves the top of the viewport to offset.
func (v *Viewport) ScrollTo(offset int) {
	v.mu.Lock()
	v.offset = offset
	v.mu.Unlock()
	v.notify()
}

// Resize changes the visible height.
func (v *Viewport) Resize(height int) {
	v.mu.Lock()
	v.height = height
	v.mu.Unlock()
	v.notify()
}

// Observed returns the number of live subscriptions.
func (v *Viewport) Observed() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

type delivery struct {
	sub   *viewportSubscription
	entry Entry
}

// notify reports changed entries. Callbacks run without the lock held so they may unsubscribe.
func (v *Viewport) notify() {
	v.mu.Lock()
	pending := make([]delivery, 0, len(v.subs))
	for _, sub := range v.subs {
		now := v.intersects(sub.target)
		if now == sub.last {
			continue
		}
		sub.last = now
		pending = append(pending, delivery{sub: sub, entry: Entry{Target: sub.target, IsIntersecting: now}})
	}
	v.mu.Unlock()

	for _, d := range pending {
		if !v.active(d.sub.id) {
			continue
		}
		d.sub.callback(d.entry)
	}
}

func (v *Viewport) active(id int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.subs[id]
	return ok
}

func (v *Viewport) intersects(target Rect) bool {
	return target.Top < v.offset+v.height+v.margin && target.Bottom() > v.offset-v.margin
}

func (s *viewportSubscription) Unsubscribe() {
	s.viewport.mu.Lock()
	delete(s.viewport.subs, s.id)
	s.viewport.mu.Unlock()
}
