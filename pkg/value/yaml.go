package value

import (
	"bytes"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"go.yaml.in/yaml/v4"
)

const yamlIndent = 2

// maxAliasDepth bounds alias expansion so self-referencing documents fail
// instead of recursing forever.
const maxAliasDepth = 64

// maxYAMLNodes caps the nodes decoded from one document, counting every
// alias expansion.
const maxYAMLNodes = 1_000_000

const yamlMergeTag = "!!merge"

// DecodeYAML parses a single YAML document. Mapping key order is preserved,
// aliases are expanded and merge keys (<<) are resolved. An empty document
// decodes to null.
func DecodeYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, errors.Wrapf(ErrDecode, "parsing YAML: %v", err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Null(), nil
	}

	var d yamlDecoder

	return d.decode(&doc, 0)
}

type yamlDecoder struct {
	nodes int
}

func (d *yamlDecoder) decode(n *yaml.Node, aliasDepth int) (Value, error) {
	d.nodes++
	if d.nodes > maxYAMLNodes {
		return Value{}, errors.Wrapf(ErrDecode, "document expands to more than %d nodes", maxYAMLNodes)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}

		return d.decode(n.Content[0], aliasDepth)
	case yaml.AliasNode:
		if aliasDepth >= maxAliasDepth || n.Alias == nil {
			return Value{}, errors.Wrapf(ErrDecode, "line %d: alias *%s cannot be resolved", n.Line, n.Value)
		}

		return d.decode(n.Alias, aliasDepth+1)
	case yaml.MappingNode:
		return d.decodeMapping(n, aliasDepth)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))

		for i, item := range n.Content {
			v, err := d.decode(item, aliasDepth)
			if err != nil {
				return Value{}, errors.Wrapf(err, "decoding index %d", i)
			}

			items = append(items, v)
		}

		return List(items...), nil
	case yaml.ScalarNode:
		return fromYAMLScalar(n)
	default:
		return Value{}, errors.Wrapf(ErrDecode, "line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

// decodeMapping decodes a mapping node. Keys set explicitly win over keys
// pulled in through <<, wherever they appear, and earlier merge sources win
// over later ones.
func (d *yamlDecoder) decodeMapping(n *yaml.Node, aliasDepth int) (Value, error) {
	m := NewMap()

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return Value{}, errors.Wrapf(ErrDecode, "line %d: mapping keys must be scalars", keyNode.Line)
		}

		if keyNode.ShortTag() == yamlMergeTag {
			if err := d.mergeInto(m, valNode, aliasDepth); err != nil {
				return Value{}, err
			}

			continue
		}

		v, err := d.decode(valNode, aliasDepth)
		if err != nil {
			return Value{}, errors.Wrapf(err, "decoding %q", keyNode.Value)
		}

		m.Set(keyNode.Value, v)
	}

	return FromMap(m), nil
}

// mergeInto copies the entries of a merge key source into m, skipping keys
// m already holds. The source is a map or a sequence of maps.
func (d *yamlDecoder) mergeInto(m *Map, n *yaml.Node, aliasDepth int) error {
	sources := []*yaml.Node{n}

	resolved := n
	for resolved.Kind == yaml.AliasNode && resolved.Alias != nil {
		resolved = resolved.Alias
	}

	if resolved.Kind == yaml.SequenceNode {
		sources = resolved.Content
	}

	for _, src := range sources {
		v, err := d.decode(src, aliasDepth)
		if err != nil {
			return errors.Wrap(err, "decoding merge key")
		}

		from, ok := v.Map()
		if !ok {
			return errors.Wrapf(ErrDecode, "line %d: merge key value must be a map or a list of maps", src.Line)
		}

		from.Range(func(key string, item Value) bool {
			if !m.Has(key) {
				m.Set(key, item)
			}

			return true
		})
	}

	return nil
}

func fromYAMLScalar(n *yaml.Node) (Value, error) {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return Value{}, errors.Wrapf(ErrDecode, "line %d: %v", n.Line, err)
	}

	switch x := raw.(type) {
	case time.Time:
		// keep timestamps in their source spelling
		return String(n.Value), nil
	case []byte:
		return String(string(x)), nil
	default:
		v, err := FromAny(raw)
		if err != nil {
			return Value{}, errors.Wrapf(err, "line %d", n.Line)
		}

		return v, nil
	}
}

// EncodeYAML renders v as a YAML document with map keys in insertion order.
func EncodeYAML(v Value) ([]byte, error) {
	node, err := toYAMLNode(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)

	if err := enc.Encode(node); err != nil {
		return nil, errors.Wrapf(ErrEncode, "encoding YAML: %v", err)
	}

	if err := enc.Close(); err != nil {
		return nil, errors.Wrapf(ErrEncode, "closing YAML encoder: %v", err)
	}

	return buf.Bytes(), nil
}

func toYAMLNode(v Value) (*yaml.Node, error) {
	switch v.kind {
	case KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

		var err error

		v.m.Range(func(key string, item Value) bool {
			var keyNode, valNode *yaml.Node

			keyNode, err = scalarNode(key)
			if err != nil {
				return false
			}

			valNode, err = toYAMLNode(item)
			if err != nil {
				err = errors.Wrapf(err, "encoding %q", key)

				return false
			}

			n.Content = append(n.Content, keyNode, valNode)

			return true
		})

		return n, err
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}

		for i, item := range v.list {
			child, err := toYAMLNode(item)
			if err != nil {
				return nil, errors.Wrapf(err, "encoding index %d", i)
			}

			n.Content = append(n.Content, child)
		}

		return n, nil
	case KindFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(v.f)}, nil
	case KindNull, KindOpaque, KindBool, KindInt, KindString:
		return scalarNode(v.Interface())
	default:
		return nil, errors.Wrapf(ErrEncode, "cannot encode %s value", v.kind)
	}
}

func scalarNode(x any) (*yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(x); err != nil {
		return nil, errors.Wrapf(ErrEncode, "encoding scalar: %v", err)
	}

	return &n, nil
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}

	s, _ := formatFloat(f)

	return s
}
