package lazymedia

import (
	"bytes"
	"html/template"
)

// Element names used in render trees.
const (
	ElementDiv   = "div"
	ElementImage = "img"
	ElementVideo = "video"
)

// Node is a render tree for one media instance.
type Node struct {
	Element  string
	Class    string
	State    State
	Kind     Kind
	LazySrc  string
	Src      string
	Alt      string
	Width    int
	Height   int
	Hidden   bool
	Children []Node
}

// Walk visits n and its descendants depth first.
func (n Node) Walk(visit func(Node)) {
	visit(n)
	for _, child := range n.Children {
		child.Walk(visit)
	}
}

// Resource returns the image or video node if the tree contains one.
func (n Node) Resource() (Node, bool) {
	var found Node
	ok := false
	n.Walk(func(node Node) {
		if !ok && (node.Element == ElementImage || node.Element == ElementVideo) {
			found, ok = node, true
		}
	})
	return found, ok
}

// HasPlaceholder reports whether the skeleton placeholder is rendered.
func (n Node) HasPlaceholder() bool {
	has := false
	n.Walk(func(node Node) {
		if node.Class == "lazy-media__placeholder" {
			has = true
		}
	})
	return has
}

// Render builds the tree for the current state. While Idle only the placeholder exists; from
// Pending the resource element is present but hidden; once Loaded the placeholder is gone.
func (m *Media) Render() Node {
	state := m.State()
	wrapper := Node{
		Element: ElementDiv,
		Class:   "lazy-media lazy-media--" + string(state),
		State:   state,
		Kind:    m.kind,
		Width:   m.source.Width,
		Height:  m.source.Height,
	}
	if state == Idle {
		wrapper.LazySrc = m.source.URL
	}

	if state != Loaded {
		wrapper.Children = append(wrapper.Children, Node{
			Element: ElementDiv,
			Class:   "lazy-media__placeholder",
			Alt:     m.source.Alt,
		})
	}
	if state == Idle {
		return wrapper
	}

	resource := Node{
		Class:  "lazy-media__resource",
		Src:    m.source.URL,
		Alt:    m.source.Alt,
		Width:  m.source.Width,
		Height: m.source.Height,
		Hidden: state != Loaded,
	}
	if m.kind == KindVideo {
		resource.Element = ElementVideo
	} else {
		resource.Element = ElementImage
	}
	wrapper.Children = append(wrapper.Children, resource)
	return wrapper
}

var nodeTemplate = template.Must(template.New("media").Parse(
	`{{define "node"}}` +
		`{{if eq .Element "img"}}<img class="{{.Class}}{{if .Hidden}} is-hidden{{else}} is-visible{{end}}" src="{{.Src}}" alt="{{.Alt}}" loading="lazy"{{if .Width}} width="{{.Width}}"{{end}}{{if .Height}} height="{{.Height}}"{{end}}>` +
		`{{else if eq .Element "video"}}<video class="{{.Class}}{{if .Hidden}} is-hidden{{else}} is-visible{{end}}" src="{{.Src}}" aria-label="{{.Alt}}" muted playsinline controls preload="metadata"{{if .Width}} width="{{.Width}}"{{end}}{{if .Height}} height="{{.Height}}"{{end}}></video>` +
		`{{else}}<div class="{{.Class}}"{{if .State}} data-state="{{.State}}"{{end}}{{if .Kind}} data-kind="{{.Kind}}"{{end}}{{if .LazySrc}} data-lazy-src="{{.LazySrc}}"{{end}}{{if .Alt}} aria-label="{{.Alt}}"{{end}}{{if and .Width .Height}} style="aspect-ratio: {{.Width}} / {{.Height}}"{{end}}>` +
		`{{range .Children}}{{template "node" .}}{{end}}</div>{{end}}` +
		`{{end}}{{template "node" .}}`,
))

// RenderHTML renders a tree with html/template escaping.
func RenderHTML(node Node) (template.HTML, error) {
	var buf bytes.Buffer
	if err := nodeTemplate.Execute(&buf, node); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
