// Package host defines the contract between the reconciler and a retained
// host tree of native nodes.
//
// A host adapter owns the native objects. The reconciler only ever talks to
// it through [Adapter], so any toolkit that can create, destroy, configure and
// reorder child nodes can be driven by vtree. Adapters that expose containers
// which only support whole-content replacement (list boxes) additionally
// implement [ItemSetter].
package host

import (
	"errors"
	"fmt"
)

// Handle identifies one live host node. The zero Handle is never a valid node.
type Handle uint64

// None is the invalid handle.
const None Handle = 0

// IsValid reports whether h can refer to a node.
func (h Handle) IsValid() bool {
	return h != None
}

// String returns the handle as "#<n>".
func (h Handle) String() string {
	return fmt.Sprintf("#%d", uint64(h))
}

// Node kinds the reconciler creates besides element tags.
const (
	// KindText is a leaf node displaying its "text" property.
	KindText = "#text"

	// KindPortalAnchor is the placeholder a portal leaves in its declaring parent.
	KindPortalAnchor = "#portal"

	// KindSlot is the container a child component renders into.
	KindSlot = "#slot"
)

// Property names the reconciler sets itself.
const (
	PropText = "text"
	PropSlot = "slot"
	PropKey  = "key"
)

// Adapter is the only contract the reconciler needs from a host toolkit.
//
// Every method is called from the single render goroutine. Implementations
// may be destroyed out-of-band; Exists must then report false.
type Adapter interface {
	// CreateNode creates a node of the given kind as the last child of parent.
	CreateNode(parent Handle, kind string) (Handle, error)

	// DestroyNode destroys h and, recursively, all of its children.
	DestroyNode(h Handle) error

	// SetProperty sets one named property. A nil value clears the property.
	SetProperty(h Handle, name string, value any) error

	// Children returns the children of parent in display order.
	Children(parent Handle) []Handle

	// Exists reports whether h is a live node.
	Exists(h Handle) bool

	// ReorderToEnd detaches h and reattaches it as the last child of its parent.
	ReorderToEnd(h Handle) error
}

// ItemSetter is implemented by adapters with list containers that cannot
// host child nodes and only support replacing their whole content.
type ItemSetter interface {
	// IsList reports whether nodes of kind are list containers.
	IsList(kind string) bool

	// SetItems replaces the displayed items of the list container h.
	SetItems(h Handle, items []string) error
}

// Sentinel errors returned by adapters.
var (
	// ErrNodeNotFound is returned when a handle does not name a live node.
	ErrNodeNotFound = errors.New("host: node not found")

	// ErrNotList is returned by SetItems for nodes that are not list containers.
	ErrNotList = errors.New("host: node is not a list container")

	// ErrInvalidParent is returned when a node cannot be created under parent.
	ErrInvalidParent = errors.New("host: invalid parent")
)

// NodeError wraps an adapter failure with the operation and handle.
type NodeError struct {
	Op     string
	Handle Handle
	Err    error
}

// Error returns the error message with node context.
func (e *NodeError) Error() string {
	return fmt.Sprintf("host: %s %s: %v", e.Op, e.Handle, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// NewNodeError creates a new NodeError.
func NewNodeError(op string, h Handle, err error) *NodeError {
	return &NodeError{Op: op, Handle: h, Err: err}
}

// IsMissing reports whether err means the node no longer exists.
func IsMissing(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}
