package vdom

import "github.com/vango-dev/vtree/pkg/host"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindText    VKind = iota // Leaf display text
	KindElement              // Native node with props and children
	KindPortal               // Renders its child into a foreign host subtree
	KindSlot                 // Mount point of a child component
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindElement:
		return "Element"
	case KindPortal:
		return "Portal"
	case KindSlot:
		return "Slot"
	default:
		return "Unknown"
	}
}

// VNode describes one position of the virtual tree for one render.
// VNodes are created fresh every render and must not be mutated after they
// have been handed to the reconciler.
type VNode struct {
	Kind VKind

	// Text is the display value of a KindText node.
	Text string

	// Tag is the element tag name (e.g. "div", "button").
	Tag string

	// Props holds element properties, including callbacks.
	Props Props

	// Children are the element's declared children in order.
	Children []*VNode

	// Key identifies the node among its siblings. Required for portals and slots.
	Key string

	// MemoKey asserts that two elements with equal non-empty memo keys render
	// identically. The reconciler does not descend into memo matches.
	MemoKey string

	// Target is the host node a KindPortal renders into.
	Target host.Handle

	// Child is the single subtree of a KindPortal.
	Child *VNode

	// Factory creates the component mounted by a KindSlot. It is opaque to
	// this package; the component runtime type-asserts it.
	Factory any

	// Args are extra constructor arguments for a KindSlot.
	Args []any
}

// Props holds element properties.
type Props map[string]any

// Attr represents a single property.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// IsKeyed returns true if the node carries a key.
func (v *VNode) IsKeyed() bool {
	return v != nil && v.Key != ""
}

// Prop returns the named property, or nil.
func (v *VNode) Prop(name string) any {
	if v == nil || v.Props == nil {
		return nil
	}
	return v.Props[name]
}
