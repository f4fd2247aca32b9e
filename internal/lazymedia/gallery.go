package lazymedia

// Layout places gallery items on a fixed grid.
type Layout struct {
	Columns   int
	RowHeight int
	Gap       int
	Offset    int
}

// Rect returns the position of the item at index.
func (l Layout) Rect(index int) Rect {
	columns := l.Columns
	if columns <= 0 {
		columns = 1
	}
	row := index / columns
	return Rect{Top: l.Offset + row*(l.RowHeight+l.Gap), Height: l.RowHeight}
}

// Item is one entry handed to a gallery.
type Item struct {
	Kind   Kind
	Source Source
}

// Gallery owns the media instances of one page.
type Gallery struct {
	items []*Media
}

// NewGallery lays out items and creates one media instance per item.
func NewGallery(items []Item, layout Layout, fetcher Fetcher) *Gallery {
	media := make([]*Media, 0, len(items))
	for i, item := range items {
		media = append(media, New(item.Kind, item.Source, layout.Rect(i), fetcher))
	}
	return &Gallery{items: media}
}

// Items returns the media instances in layout order.
func (g *Gallery) Items() []*Media {
	return g.items
}

// Mount observes every item with the shared observer.
func (g *Gallery) Mount(observer Observer) {
	for _, item := range g.items {
		item.Mount(observer)
	}
}

// Unmount releases every observation.
func (g *Gallery) Unmount() {
	for _, item := range g.items {
		item.Unmount()
	}
}

// Render returns one tree per item.
func (g *Gallery) Render() []Node {
	nodes := make([]Node, 0, len(g.items))
	for _, item := range g.items {
		nodes = append(nodes, item.Render())
	}
	return nodes
}

// Count returns how many items are in the given state.
func (g *Gallery) Count(state State) int {
	n := 0
	for _, item := range g.items {
		if item.State() == state {
			n++
		}
	}
	return n
}
