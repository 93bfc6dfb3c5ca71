package sanitize

import (
	"errors"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// BindingsFromYAML parses a YAML (or JSON) mapping into Bindings, keeping
// document key order. Empty input yields empty Bindings. A sequence or
// scalar document fails with ErrInvalidBindingShape.
func BindingsFromYAML(data []byte) (*Bindings, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return NewBindings(), nil
	}
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: got YAML %s", ErrInvalidBindingShape, nodeKindName(doc.Kind))
	}

	b := NewBindings()
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := resolveAlias(doc.Content[i]), doc.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: non-scalar key at line %d", ErrInvalidBindingShape, key.Line)
		}
		v, err := newNodeWalker().value(val)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", ErrInvalidBindingShape, key.Value, err)
		}
		b.Set(key.Value, v)
	}
	return b, b.Validate()
}

// ColumnsFromYAML parses a YAML (or JSON) sequence into an ordered list of
// values. A mapping or scalar document fails with ErrNotSequence.
func ColumnsFromYAML(data []byte) ([]Value, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	if doc.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: got YAML %s", ErrNotSequence, nodeKindName(doc.Kind))
	}
	v, err := newNodeWalker().value(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotSequence, err)
	}
	return v.Elements(), nil
}

// ParseScalar interprets a command-line argument the way a YAML scalar is
// read: "42" is an int, "true" a bool, "~" or "null" null, and anything
// else a string.
func ParseScalar(s string) Value {
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(s), &n); err != nil || len(n.Content) == 0 {
		return String(s)
	}
	node := n.Content[0]
	if node.Kind != yaml.ScalarNode {
		return String(s)
	}
	return scalarValue(node)
}

func parseDocument(data []byte) (*yaml.Node, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	if len(n.Content) == 0 {
		return nil, nil
	}
	return resolveAlias(n.Content[0]), nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

var (
	errCyclicAlias  = errors.New("alias refers to a sequence that contains it")
	errTooManyNodes = errors.New("aliases expand to too many values")
)

// maxExpandedNodes caps how many values aliases may expand to.
const maxExpandedNodes = 1 << 20

// nodeWalker converts nodes to Values, following aliases. Sequences on the
// current path are tracked so a self-referencing anchor fails instead of
// recursing forever.
type nodeWalker struct {
	visiting map[*yaml.Node]bool
	budget   int
}

func newNodeWalker() *nodeWalker {
	return &nodeWalker{visiting: make(map[*yaml.Node]bool), budget: maxExpandedNodes}
}

func (w *nodeWalker) value(n *yaml.Node) (Value, error) {
	n = resolveAlias(n)
	if w.budget--; w.budget < 0 {
		return Value{}, errTooManyNodes
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return scalarValue(n), nil
	case yaml.SequenceNode:
		if w.visiting[n] {
			return Value{}, fmt.Errorf("%w (line %d)", errCyclicAlias, n.Line)
		}
		w.visiting[n] = true
		defer delete(w.visiting, n)

		vs := make([]Value, len(n.Content))
		for i, c := range n.Content {
			v, err := w.value(c)
			if err != nil {
				return Value{}, err
			}
			vs[i] = v
		}
		return List(vs...), nil
	case yaml.MappingNode:
		return Object(), nil
	default:
		return Null(), nil
	}
}

func scalarValue(n *yaml.Node) Value {
	switch n.ShortTag() {
	case "!!null":
		return Null()
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return Bool(b)
		}
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i)
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return Uint(u)
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return Float(f)
		}
	}
	return String(n.Value)
}

func nodeKindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	default:
		return "document"
	}
}
