package lazymedia

import (
	"strings"
	"sync"

	"github.com/looplab/fsm"

	"github.com/noah-isme/wakaf-cms-api/internal/observability"
)

// Kind selects the resource element rendered once loading starts.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// ParseKind maps stored media kinds onto Kind, defaulting to images.
func ParseKind(raw string) Kind {
	if strings.EqualFold(strings.TrimSpace(raw), string(KindVideo)) {
		return KindVideo
	}
	return KindImage
}

// Source describes the resource to load. Width and Height reserve layout space when known.
type Source struct {
	URL    string
	Alt    string
	Width  int
	Height int
}

// Fetcher starts the network fetch for a resource.
type Fetcher interface {
	Fetch(kind Kind, url string)
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc func(kind Kind, url string)

// Fetch calls f.
func (f FetchFunc) Fetch(kind Kind, url string) {
	f(kind, url)
}

// Media is one lazily loaded image or video.
type Media struct {
	kind    Kind
	source  Source
	target  Rect
	fetcher Fetcher

	mu        sync.Mutex
	machine   *fsm.FSM
	sub       Subscription
	mounted   bool
	unmounted bool
}

// NewImage creates an image instance positioned at target.
func NewImage(source Source, target Rect, fetcher Fetcher) *Media {
	return newMedia(KindImage, source, target, fetcher)
}

// NewVideo creates a video instance positioned at target.
func NewVideo(source Source, target Rect, fetcher Fetcher) *Media {
	return newMedia(KindVideo, source, target, fetcher)
}

// New creates an instance of the given kind.
func New(kind Kind, source Source, target Rect, fetcher Fetcher) *Media {
	return newMedia(kind, source, target, fetcher)
}

func newMedia(kind Kind, source Source, target Rect, fetcher Fetcher) *Media {
	if target.Height == 0 {
		target.Height = source.Height
	}
	return &Media{
		kind:    kind,
		source:  source,
		target:  target,
		fetcher: fetcher,
		machine: newMachine(),
	}
}

// Kind returns the media kind.
func (m *Media) Kind() Kind {
	return m.kind
}

// Source returns the resource descriptor.
func (m *Media) Source() Source {
	return m.source
}

// State returns the current lifecycle state.
func (m *Media) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State(m.machine.Current())
}

// InViewport reports whether the element was ever reported near the viewport.
func (m *Media) InViewport() bool {
	return m.State() != Idle
}

// Loaded reports whether the resource finished loading.
func (m *Media) Loaded() bool {
	return m.State() == Loaded
}

// Mount starts observing the element. Mounting twice, or after Unmount, does nothing.
func (m *Media) Mount(observer Observer) {
	m.mu.Lock()
	if m.mounted || m.unmounted || State(m.machine.Current()) != Idle {
		m.mu.Unlock()
		return
	}
	m.mounted = true
	m.mu.Unlock()

	// The observer may report the initial state before Observe returns.
	sub := observer.Observe(m.target, m.handleEntry)

	m.mu.Lock()
	release := m.unmounted || State(m.machine.Current()) != Idle
	if !release {
		m.sub = sub
	}
	m.mu.Unlock()

	if release {
		sub.Unsubscribe()
	}
}

// Unmount releases the observation. An in-flight fetch is not cancelled, but later load
// signals are ignored.
func (m *Media) Unmount() {
	m.mu.Lock()
	m.unmounted = true
	sub := m.sub
	m.sub = nil
	m.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// HandleLoad records the resource load completion signal.
func (m *Media) HandleLoad() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unmounted {
		return false
	}
	return advance(m.machine, eventLoad)
}

func (m *Media) handleEntry(entry Entry) {
	if !entry.IsIntersecting {
		return
	}

	m.mu.Lock()
	if m.unmounted || !advance(m.machine, eventIntersect) {
		m.mu.Unlock()
		return
	}
	sub := m.sub
	m.sub = nil
	m.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}

	observability.LazyMediaFetches().WithLabelValues(string(m.kind)).Inc()
	if m.fetcher != nil {
		m.fetcher.Fetch(m.kind, m.source.URL)
	}
}
