package htmldom

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/carbyne-dev/carbyne/pkg/dom"
)

const skeleton = "<!DOCTYPE html><html><head></head><body></body></html>"

// MutationKind names a change to the connected tree.
type MutationKind string

const (
	MutationInsert    MutationKind = "insert"
	MutationRemove    MutationKind = "remove"
	MutationAttribute MutationKind = "attribute"
	MutationText      MutationKind = "text"
)

// Mutation describes one change to a node connected to the document.
type Mutation struct {
	Kind MutationKind `json:"kind"`
	// Target is the path of the node that changed, or of the parent for
	// insertions and removals.
	Target string `json:"target"`
	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`
	// HTML is the serialized inserted or removed node.
	HTML string `json:"html,omitempty"`
}

// Document is an HTML document.
type Document struct {
	root *html.Node
	head *html.Node
	body *html.Node

	mu   sync.Mutex
	subs map[int]func(Mutation)
	next int
}

// New returns an empty document with head and body elements.
func New() *Document {
	d, err := Parse(strings.NewReader(skeleton))
	if err != nil {
		panic(fmt.Sprintf("htmldom: parse skeleton: %v", err))
	}
	return d
}

// Parse parses an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	d := &Document{root: root, subs: make(map[int]func(Mutation))}
	d.head = find(root, atom.Head)
	d.body = find(root, atom.Body)
	return d, nil
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}

// Root returns the document node.
func (d *Document) Root() dom.Node { return d.wrap(d.root) }

// Head returns the head element.
func (d *Document) Head() dom.Node { return d.wrap(d.head) }

// Body returns the body element.
func (d *Document) Body() dom.Node { return d.wrap(d.body) }

// GetElementByID returns the first element with the given id, or nil.
func (d *Document) GetElementByID(id string) dom.Node {
	var walk func(n *html.Node) *html.Node
	walk = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Namespace == "" && a.Key == "id" && a.Val == id {
					return n
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	if n := walk(d.root); n != nil {
		return d.wrap(n)
	}
	return nil
}

// CreateElement implements dom.Host.
func (d *Document) CreateElement(tag string) dom.Node {
	tag = strings.ToLower(tag)
	return d.wrap(&html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))})
}

// CreateText implements dom.Host.
func (d *Document) CreateText(data string) dom.Node {
	return d.wrap(&html.Node{Type: html.TextNode, Data: data})
}

// CreateComment implements dom.Host.
func (d *Document) CreateComment(data string) dom.Node {
	return d.wrap(&html.Node{Type: html.CommentNode, Data: data})
}

// CreateFragment implements dom.Host. A fragment is a parentless document
// node; rendering it renders its children.
func (d *Document) CreateFragment() dom.Node {
	return d.wrap(&html.Node{Type: html.DocumentNode})
}

// Subscribe registers fn for mutations of connected nodes and returns a
// function removing it.
func (d *Document) Subscribe(fn func(Mutation)) func() {
	d.mu.Lock()
	id := d.next
	d.next++
	d.subs[id] = fn
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subs, id)
			d.mu.Unlock()
		})
	}
}

func (d *Document) publish(m Mutation) {
	d.mu.Lock()
	if len(d.subs) == 0 {
		d.mu.Unlock()
		return
	}
	ids := make([]int, 0, len(d.subs))
	for id := range d.subs {
		ids = append(ids, id)
	}
	fns := make([]func(Mutation), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, d.subs[id])
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(m)
	}
}

func (d *Document) observed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs) > 0
}

// connected reports whether n is part of the document tree.
func (d *Document) connected(n *html.Node) bool {
	for n.Parent != nil {
		n = n.Parent
	}
	return n == d.root
}

// Render writes the HTML serialization of n.
func (d *Document) Render(w io.Writer, n dom.Node) error {
	h, err := d.unwrap(n)
	if err != nil {
		return err
	}
	return html.Render(w, h)
}

// OuterHTML returns the serialization of n including n itself.
func (d *Document) OuterHTML(n dom.Node) string {
	var buf bytes.Buffer
	if err := d.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML returns the serialization of the children of n.
func (d *Document) InnerHTML(n dom.Node) string {
	h, err := d.unwrap(n)
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// String renders the whole document.
func (d *Document) String() string {
	return d.OuterHTML(d.Root())
}

func (d *Document) wrap(h *html.Node) dom.Node {
	if h == nil {
		return nil
	}
	return node{doc: d, h: h}
}

func (d *Document) unwrap(n dom.Node) (*html.Node, error) {
	x, ok := n.(node)
	if !ok || x.doc != d {
		return nil, dom.ErrForeignNode
	}
	return x.h, nil
}

// pathOf describes n as a slash separated list of tag names with sibling
// indexes, for example "html/body/div[1]".
func pathOf(n *html.Node) string {
	var parts []string
	for ; n != nil && n.Type != html.DocumentNode; n = n.Parent {
		idx := 0
		for s := n.PrevSibling; s != nil; s = s.PrevSibling {
			idx++
		}
		name := nodeName(n)
		if n.Parent != nil && n.Parent.Type != html.DocumentNode {
			name = fmt.Sprintf("%s[%d]", name, idx)
		}
		parts = append(parts, name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

func nodeName(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		return n.Data
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DocumentNode:
		return "#document"
	default:
		return "#node"
	}
}
