package vdom

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateKey is wrapped by Validate when siblings share a key.
var ErrDuplicateKey = errors.New("vdom: duplicate key")

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// Range maps a slice to VNodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		node := fn(item, i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Key creates a key attribute for reconciliation.
// The key is converted to a string using fmt.Sprint.
func Key(key any) Attr {
	return Attr{Key: attrKey, Value: fmt.Sprint(key)}
}

// Prop creates an arbitrary property.
func Prop(name string, value any) Attr {
	return Attr{Key: name, Value: value}
}

// MemoBy creates a memo-key attribute from dependency values. Two elements
// with the same memo key are treated as identical by the reconciler.
func MemoBy(deps ...any) Attr {
	return Attr{Key: attrMemo, Value: MemoKey(deps...)}
}

// OnCommand attaches the activation callback of a button-like widget.
func OnCommand(fn func()) Attr {
	return Attr{Key: "command", Value: fn}
}

// OnInput attaches the text-change callback of an input widget.
func OnInput(fn func(value string)) Attr {
	return Attr{Key: "on_input", Value: fn}
}

// MemoKey joins dependency values into a memo key.
func MemoKey(deps ...any) string {
	parts := make([]string, len(deps))
	for i, d := range deps {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, "|")
}

// ItemText derives the display text of a node placed inside a list container.
// Text nodes yield their value; elements yield their "text" property or,
// failing that, the text of their first child.
func ItemText(node *VNode) string {
	if node == nil {
		return ""
	}
	switch node.Kind {
	case KindText:
		return node.Text
	case KindElement:
		if s, ok := node.Props["text"].(string); ok {
			return s
		}
		if len(node.Children) > 0 {
			return ItemText(node.Children[0])
		}
		return ""
	case KindPortal:
		return ItemText(node.Child)
	default:
		return node.Key
	}
}

// Items derives the display texts of a list of nodes.
func Items(nodes []*VNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = ItemText(n)
	}
	return out
}

// Validate checks that no children list contains two children with the
// same key. It returns the first duplicate found.
func Validate(node *VNode) error {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case KindPortal:
		return Validate(node.Child)
	case KindElement:
		seen := make(map[string]struct{}, len(node.Children))
		for _, c := range node.Children {
			if c == nil {
				return fmt.Errorf("vdom: nil child in <%s>", node.Tag)
			}
			if c.Key != "" {
				if _, dup := seen[c.Key]; dup {
					return fmt.Errorf("%w %q in <%s>", ErrDuplicateKey, c.Key, node.Tag)
				}
				seen[c.Key] = struct{}{}
			}
			if err := Validate(c); err != nil {
				return err
			}
		}
	}
	return nil
}
