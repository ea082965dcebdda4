package devtools

import (
	"fmt"

	"github.com/carbyne-dev/carbyne/pkg/atom"
	"github.com/carbyne-dev/carbyne/pkg/dom"
	"github.com/carbyne-dev/carbyne/pkg/observable"
)

// TreeNode is the JSON form of a node or host child.
type TreeNode struct {
	Kind        string            `json:"kind"`
	Tag         string            `json:"tag,omitempty"`
	State       string            `json:"state,omitempty"`
	Text        string            `json:"text,omitempty"`
	Attrs       map[string]string `json:"attrs,omitempty"`
	Controllers []string          `json:"controllers,omitempty"`
	Children    []TreeNode        `json:"children,omitempty"`
}

// Tree describes n and its descendants. Observable attribute values are
// reported with their current value. It must run on the runtime loop.
func Tree(n *atom.Node) TreeNode {
	t := TreeNode{
		Kind:  n.Kind().String(),
		Tag:   n.Tag(),
		State: n.State().String(),
	}
	if attrs := n.Attrs(); len(attrs) > 0 {
		t.Attrs = make(map[string]string, len(attrs))
		for k, v := range attrs {
			if e, ok := v.(observable.Erased); ok {
				v = e.GetAny()
			}
			t.Attrs[k] = observable.FormatValue(v)
		}
	}
	for _, c := range n.Controllers() {
		t.Controllers = append(t.Controllers, fmt.Sprintf("%T", c))
	}
	for _, c := range n.Children() {
		if c.Node != nil {
			t.Children = append(t.Children, Tree(c.Node))
			continue
		}
		t.Children = append(t.Children, hostTree(c.Host))
	}
	return t
}

func hostTree(h dom.Node) TreeNode {
	switch h.Type() {
	case dom.TextNode:
		return TreeNode{Kind: "text", Text: h.Data()}
	case dom.CommentNode:
		return TreeNode{Kind: "comment", Text: h.Data()}
	default:
		return TreeNode{Kind: "host", Tag: h.NodeName()}
	}
}
