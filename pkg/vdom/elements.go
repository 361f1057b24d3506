package vdom

import (
	"fmt"

	"github.com/vango-dev/vtree/pkg/host"
)

// Attribute names recognised by createElement instead of being stored in Props.
const (
	attrKey  = "key"
	attrMemo = "memo"
)

// createElement creates a new VNode with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, Props, *VNode, []*VNode, string.
func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props),
		Children: make([]*VNode, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			node.setAttr(v)

		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}

		case Props:
			for k, val := range v {
				node.setAttr(Attr{Key: k, Value: val})
			}

		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}

		case string:
			// Shorthand for text node
			node.Children = append(node.Children, Text(v))

		default:
			panic(fmt.Sprintf("vdom: unsupported %s argument of type %T", tag, arg))
		}
	}

	return node
}

func (v *VNode) setAttr(a Attr) {
	switch a.Key {
	case "":
		return
	case attrKey:
		v.Key = fmt.Sprint(a.Value)
	case attrMemo:
		v.MemoKey = fmt.Sprint(a.Value)
	default:
		v.Props[a.Key] = a.Value
	}
}

// H creates an element with an arbitrary tag.
func H(tag string, args ...any) *VNode { return createElement(tag, args) }

// Containers

func Div(args ...any) *VNode     { return createElement("div", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func Header(args ...any) *VNode  { return createElement("header", args) }
func Footer(args ...any) *VNode  { return createElement("footer", args) }
func Nav(args ...any) *VNode     { return createElement("nav", args) }

// Text-bearing widgets

func H1(args ...any) *VNode    { return createElement("h1", args) }
func H2(args ...any) *VNode    { return createElement("h2", args) }
func Span(args ...any) *VNode  { return createElement("span", args) }
func Label(args ...any) *VNode { return createElement("label", args) }

// Interactive widgets

func Button(args ...any) *VNode { return createElement("button", args) }
func Input(args ...any) *VNode  { return createElement("input", args) }

// Lists. A "ul" is a list container on most adapters: its children are
// reduced to their display text, see ItemText.

func Ul(args ...any) *VNode { return createElement("ul", args) }
func Li(args ...any) *VNode { return createElement("li", args) }

// PortalTo renders child into target, a host node outside the declaring
// parent. key governs the portal's identity across renders.
func PortalTo(target host.Handle, key string, child *VNode) *VNode {
	return &VNode{
		Kind:   KindPortal,
		Target: target,
		Key:    key,
		Child:  child,
	}
}

// SlotFor marks where a child component created by factory is mounted.
// The runtime, not the reconciler, owns the component's lifetime.
func SlotFor(factory any, key string, args ...any) *VNode {
	return &VNode{
		Kind:    KindSlot,
		Factory: factory,
		Key:     key,
		Args:    args,
	}
}
