package atom

import (
	"strings"

	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
	"github.com/carbyne-dev/carbyne/pkg/observable"
)

// DecoratorKey is the reserved attribute carrying decorators and
// controllers.
const DecoratorKey = "$$"

// Decorator transforms a freshly built node. Returning a different node
// substitutes it for the rest of the build; returning nil keeps n.
type Decorator func(n *Node) *Node

// Apply runs decorators and controllers in order. Decorators may be
// Decorator values, func(*Node) *Node, func(*Node) or Controller values;
// slices of them are flattened. Any other value panics with an E114 error.
func Apply(n *Node, decorators ...any) *Node {
	for _, d := range decorators {
		switch x := d.(type) {
		case nil:
		case Controller:
			n.AddController(x)
		case Decorator:
			if r := x(n); r != nil {
				n = r
			}
		case func(*Node) *Node:
			if r := x(n); r != nil {
				n = r
			}
		case func(*Node):
			x(n)
		case []Decorator:
			for _, dd := range x {
				n = Apply(n, dd)
			}
		case []Controller:
			for _, c := range x {
				n.AddController(c)
			}
		case []any:
			n = Apply(n, x...)
		default:
			panic(cerrors.New(cerrors.CodeDecorator).WithDetailf("%T on <%s>", d, n.tag))
		}
	}
	return n
}

// New builds an element node. tag accepts the ".class" and "#id" shorthand
// ("li.item.active#first"); the element name defaults to div. Classes from
// the shorthand are joined with a declared class attribute, observable or
// not. Decorators found under the "$$" key are applied after construction,
// in declaration order.
func New(tag string, attrs Attrs, children ...any) *Node {
	attrs, decorators := splitDecorators(attrs)

	name, classes, id := parseTag(tag)
	if id != "" {
		attrs["id"] = id
	}
	if len(classes) > 0 {
		addClass(attrs, strings.Join(classes, " "))
	}

	n := Element(name, attrs, children...)
	return Apply(n, decorators)
}

// Component builds a node from attributes and children.
type Component func(attrs Attrs, children []any) *Node

// Build runs c and forwards the common attributes to the node it returns:
// class and style are joined with the node's own, id and tabindex override
// them. Decorators under "$$" are applied to the result.
func Build(c Component, attrs Attrs, children ...any) *Node {
	attrs, decorators := splitDecorators(attrs)
	n := c(attrs, children)
	if n == nil {
		return nil
	}
	if n.attrs == nil {
		n.attrs = make(Attrs)
	}

	if cls, ok := attrs["class"]; ok && cls != nil {
		addClass(n.attrs, cls)
	}
	if style, ok := attrs["style"]; ok && style != nil {
		if own, ok := n.attrs["style"]; ok && own != nil {
			n.attrs["style"] = joinAttr(own, style, ";")
		} else {
			n.attrs["style"] = style
		}
	}
	for _, key := range []string{"id", "tabindex"} {
		if v, ok := attrs[key]; ok && v != nil {
			n.attrs[key] = v
		}
	}
	return Apply(n, decorators)
}

// splitDecorators copies attrs without the "$$" key.
func splitDecorators(attrs Attrs) (Attrs, any) {
	out := make(Attrs, len(attrs))
	var decorators any
	for k, v := range attrs {
		if k == DecoratorKey {
			decorators = v
			continue
		}
		out[k] = v
	}
	return out, decorators
}

func parseTag(tag string) (name string, classes []string, id string) {
	i := strings.IndexAny(tag, ".#")
	if i < 0 {
		if tag == "" {
			tag = "div"
		}
		return tag, nil, ""
	}
	name = tag[:i]
	if name == "" {
		name = "div"
	}
	rest := tag[i:]
	for rest != "" {
		marker := rest[0]
		rest = rest[1:]
		j := strings.IndexAny(rest, ".#")
		if j < 0 {
			j = len(rest)
		}
		part := rest[:j]
		rest = rest[j:]
		if part == "" {
			continue
		}
		if marker == '.' {
			classes = append(classes, part)
		} else {
			id = part
		}
	}
	return name, classes, id
}

func addClass(attrs Attrs, added any) {
	if own, ok := attrs["class"]; ok && own != nil {
		attrs["class"] = joinAttr(own, added, " ")
		return
	}
	attrs["class"] = added
}

// joinAttr joins two attribute values with sep. The result is observable
// when either side is.
func joinAttr(a, b any, sep string) any {
	joined := observable.Combine(func(args []any) string {
		return observable.FormatValue(args[0]) + sep + observable.FormatValue(args[1])
	}, a, b)
	if observable.IsObservable(a) || observable.IsObservable(b) {
		return joined
	}
	return joined.Get()
}
