package config

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
	KindList
)

// Value is one rule option: a number, string, bool, or list of values.
// The zero Value is null and behaves as if the key were absent.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	list []Value
}

func Number(n float64) Value    { return Value{kind: KindNumber, num: n} }
func String(s string) Value     { return Value{kind: KindString, str: s} }
func Bool(b bool) Value         { return Value{kind: KindBool, b: b} }
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Strings builds a list value of strings.
func Strings(items ...string) Value {
	vals := make([]Value, len(items))
	for i, s := range items {
		vals[i] = String(s)
	}
	return List(vals...)
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// UnmarshalYAML decodes scalars by their resolved tag and sequences
// element-wise. Mappings are rejected.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			*v = Value{}
		case "!!int", "!!float":
			var n float64
			if err := node.Decode(&n); err != nil {
				return err
			}
			*v = Number(n)
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}
			*v = Bool(b)
		default:
			*v = String(node.Value)
		}
		return nil
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			var item Value
			if err := item.UnmarshalYAML(child); err != nil {
				return err
			}
			items = append(items, item)
		}
		*v = List(items...)
		return nil
	case yaml.AliasNode:
		return v.UnmarshalYAML(node.Alias)
	default:
		return fmt.Errorf("line %d: rule options must be scalars or lists", node.Line)
	}
}

// MarshalJSON renders the value as its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

// Options is the opaque key-value document handed to detectors.
type Options map[string]Value

// Int returns the number stored at key truncated to an int, or def.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok && v.kind == KindNumber {
		return int(v.num)
	}
	return def
}

// Float returns the number stored at key, or def.
func (o Options) Float(key string, def float64) float64 {
	if v, ok := o[key]; ok && v.kind == KindNumber {
		return v.num
	}
	return def
}

// String returns the string stored at key, or def. Numbers and bools are
// formatted.
func (o Options) String(key, def string) string {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return def
	}
}

// Bool returns the bool stored at key, or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok && v.kind == KindBool {
		return v.b
	}
	return def
}

// StringList returns the strings stored at key, or def. A single string is
// returned as a one-element list; non-string list items are skipped.
func (o Options) StringList(key string, def []string) []string {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch v.kind {
	case KindString:
		return []string{v.str}
	case KindList:
		out := make([]string, 0, len(v.list))
		for _, item := range v.list {
			if item.kind == KindString {
				out = append(out, item.str)
			}
		}
		return out
	default:
		return def
	}
}
