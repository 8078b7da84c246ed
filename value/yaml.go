package value

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML (or JSON) document into a Value. Mapping keys
// keep their document order, which is what makes a decoded condition
// compile to deterministic SQL.
func ParseYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Nil(), err
	}
	return FromNode(&doc)
}

// FromNode converts an already decoded yaml node.
func FromNode(n *yaml.Node) (Value, error) {
	if n == nil {
		return Nil(), nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Nil(), nil
		}
		return FromNode(n.Content[0])
	case yaml.AliasNode:
		return FromNode(n.Alias)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := FromNode(c)
			if err != nil {
				return Nil(), err
			}
			items = append(items, item)
		}
		return Of(items...), nil
	case yaml.MappingNode:
		pairs := make([]Pair, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return Nil(), fmt.Errorf("%w: line %d: mapping key must be a scalar", ErrUnsupported, k.Line)
			}
			val, err := FromNode(v)
			if err != nil {
				return Nil(), err
			}
			pairs = append(pairs, Pair{Key: k.Value, Value: val})
		}
		return Pairs(pairs...), nil
	case yaml.ScalarNode:
		return fromScalar(n)
	}
	return Nil(), fmt.Errorf("%w: line %d: yaml node kind %d", ErrUnsupported, n.Line, n.Kind)
}

func fromScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Nil(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Nil(), err
		}
		return From(b)
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return Int(i), nil
		}
		var i int64
		if err := n.Decode(&i); err != nil {
			return Nil(), err
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Nil(), err
		}
		return Float(f), nil
	}
	return Str(n.Value), nil
}
