package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// NodeKind tags the intermediate document tree the processors consume.
type NodeKind uint8

const (
	NullNode NodeKind = iota
	IntNode
	StringNode
	BoolNode
	ArrayNode
	HashNode
)

func (k NodeKind) String() string {
	switch k {
	case NullNode:
		return "null"
	case IntNode:
		return "integer"
	case StringNode:
		return "string"
	case BoolNode:
		return "bool"
	case ArrayNode:
		return "array"
	default:
		return "hash"
	}
}

// Node is one value of the intermediate tree. Hash entries keep document
// order; the string-matcher "last field wins" rule depends on it.
type Node struct {
	Kind NodeKind
	Line int
	Col  int

	Int   int64
	Str   string
	Bool  bool
	Array []Node
	Hash  []HashEntry
}

// HashEntry is one ordered key/value pair of a hash node.
type HashEntry struct {
	Key   string
	Value Node
}

// Get returns the value of the first entry with the given key.
func (n Node) Get(key string) (Node, bool) {
	for _, e := range n.Hash {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Node{}, false
}

var yamlLineRegex = regexp.MustCompile(`line (\d+):`)

// ParseTree turns YAML text into the intermediate tree. Any parser failure
// becomes a FormatError, with the line lifted out of the yaml error text
// when present.
func ParseTree(data []byte) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		e := &Error{Kind: FormatError, Msg: err.Error()}
		if m := yamlLineRegex.FindStringSubmatch(err.Error()); m != nil {
			e.Line, _ = strconv.Atoi(m[1])
		}
		return Node{}, e
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Node{}, &Error{Kind: FormatError, Msg: "empty document"}
	}
	return fromYamlNode(doc.Content[0])
}

func fromYamlNode(y *yaml.Node) (Node, error) {
	for y.Kind == yaml.AliasNode {
		y = y.Alias
	}

	node := Node{Line: y.Line, Col: y.Column}

	switch y.Kind {
	case yaml.ScalarNode:
		switch y.Tag {
		case "!!null":
			node.Kind = NullNode
		case "!!int":
			i, err := strconv.ParseInt(y.Value, 0, 64)
			if err != nil {
				return Node{}, &Error{
					Kind: FormatError,
					Msg:  fmt.Sprintf("bad integer %q: %v", y.Value, err),
					Line: y.Line,
					Col:  y.Column,
				}
			}
			node.Kind = IntNode
			node.Int = i
		case "!!bool":
			node.Kind = BoolNode
			node.Bool = strings.EqualFold(y.Value, "true")
		default:
			node.Kind = StringNode
			node.Str = y.Value
		}
	case yaml.SequenceNode:
		node.Kind = ArrayNode
		for _, item := range y.Content {
			sub, err := fromYamlNode(item)
			if err != nil {
				return Node{}, err
			}
			node.Array = append(node.Array, sub)
		}
	case yaml.MappingNode:
		node.Kind = HashNode
		for i := 0; i+1 < len(y.Content); i += 2 {
			value, err := fromYamlNode(y.Content[i+1])
			if err != nil {
				return Node{}, err
			}
			node.Hash = append(node.Hash, HashEntry{
				Key:   y.Content[i].Value,
				Value: value,
			})
		}
	default:
		return Node{}, &Error{
			Kind: FormatError,
			Msg:  fmt.Sprintf("unsupported yaml node kind %d", y.Kind),
			Line: y.Line,
			Col:  y.Column,
		}
	}

	return node, nil
}
