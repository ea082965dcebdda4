package htmldom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/carbyne-dev/carbyne/pkg/dom"
)

// node is a value wrapper, so two wrappers of the same html.Node compare
// equal.
type node struct {
	doc *Document
	h   *html.Node
}

var _ dom.Node = node{}

func (n node) Type() dom.NodeType {
	switch n.h.Type {
	case html.ElementNode:
		return dom.ElementNode
	case html.TextNode:
		return dom.TextNode
	case html.CommentNode:
		return dom.CommentNode
	case html.DocumentNode:
		if n.h == n.doc.root {
			return dom.DocumentNode
		}
		return dom.FragmentNode
	}
	return 0
}

func (n node) NodeName() string {
	if n.h.Type == html.DocumentNode && n.h != n.doc.root {
		return "#document-fragment"
	}
	return nodeName(n.h)
}

func (n node) Parent() dom.Node {
	return n.doc.wrap(n.h.Parent)
}

func (n node) ChildNodes() []dom.Node {
	var out []dom.Node
	for c := n.h.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, n.doc.wrap(c))
	}
	return out
}

func (n node) InsertBefore(child, ref dom.Node) error {
	c, err := n.doc.unwrap(child)
	if err != nil {
		return err
	}
	var r *html.Node
	if ref != nil {
		if r, err = n.doc.unwrap(ref); err != nil {
			return err
		}
		if r.Parent != n.h {
			return dom.ErrNotChild
		}
	}
	if n.h.Type != html.ElementNode && n.h.Type != html.DocumentNode {
		return dom.ErrHierarchy
	}
	for a := n.h; a != nil; a = a.Parent {
		if a == c {
			return dom.ErrHierarchy
		}
	}

	if c.Type == html.DocumentNode {
		if c == n.doc.root {
			return dom.ErrHierarchy
		}
		for c.FirstChild != nil {
			k := c.FirstChild
			c.RemoveChild(k)
			n.insert(k, r)
		}
		return nil
	}

	if c == r {
		return nil
	}
	if c.Parent != nil {
		node{doc: n.doc, h: c.Parent}.remove(c)
	}
	n.insert(c, r)
	return nil
}

func (n node) insert(c, r *html.Node) {
	if r == nil {
		n.h.AppendChild(c)
	} else {
		n.h.InsertBefore(c, r)
	}
	if n.doc.connected(n.h) && n.doc.observed() {
		n.doc.publish(Mutation{Kind: MutationInsert, Target: pathOf(n.h), HTML: render(c)})
	}
}

func (n node) RemoveChild(child dom.Node) error {
	c, err := n.doc.unwrap(child)
	if err != nil {
		return err
	}
	if c.Parent != n.h {
		return dom.ErrNotChild
	}
	n.remove(c)
	return nil
}

func (n node) remove(c *html.Node) {
	connected := n.doc.connected(n.h) && n.doc.observed()
	var m Mutation
	if connected {
		m = Mutation{Kind: MutationRemove, Target: pathOf(n.h), HTML: render(c)}
	}
	n.h.RemoveChild(c)
	if connected {
		n.doc.publish(m)
	}
}

func (n node) SetAttribute(name, value string) {
	if n.h.Type != html.ElementNode {
		return
	}
	name = strings.ToLower(name)
	found := false
	for i := range n.h.Attr {
		if n.h.Attr[i].Namespace == "" && n.h.Attr[i].Key == name {
			if n.h.Attr[i].Val == value {
				return
			}
			n.h.Attr[i].Val = value
			found = true
			break
		}
	}
	if !found {
		n.h.Attr = append(n.h.Attr, html.Attribute{Key: name, Val: value})
	}
	n.publishAttr(name, value)
}

func (n node) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	for i, a := range n.h.Attr {
		if a.Namespace == "" && a.Key == name {
			n.h.Attr = append(n.h.Attr[:i], n.h.Attr[i+1:]...)
			n.publishAttr(name, "")
			return
		}
	}
}

func (n node) publishAttr(name, value string) {
	if n.doc.connected(n.h) && n.doc.observed() {
		n.doc.publish(Mutation{Kind: MutationAttribute, Target: pathOf(n.h), Name: name, Value: value})
	}
}

func (n node) Attribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range n.h.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (n node) Data() string {
	if n.h.Type == html.TextNode || n.h.Type == html.CommentNode {
		return n.h.Data
	}
	return ""
}

func (n node) SetData(data string) {
	if n.h.Type != html.TextNode && n.h.Type != html.CommentNode {
		return
	}
	if n.h.Data == data {
		return
	}
	n.h.Data = data
	if n.doc.connected(n.h) && n.doc.observed() {
		n.doc.publish(Mutation{Kind: MutationText, Target: pathOf(n.h), Value: data})
	}
}

func (n node) TextContent() string {
	switch n.h.Type {
	case html.TextNode, html.CommentNode:
		return n.h.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(h *html.Node) {
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				walk(c)
			}
		}
	}
	walk(n.h)
	return b.String()
}

func render(h *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, h); err != nil {
		return ""
	}
	return b.String()
}
