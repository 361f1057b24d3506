// Package vdom provides the virtual tree node model for vtree.
//
// A virtual tree is an immutable-by-convention description of what a host
// tree should look like after one render. It is diffed against the tree of
// the previous render by package reconcile, which turns the difference into
// mutations on a retained host tree.
//
// # Core Types
//
// VNode is a tagged union with four variants:
//
//   - KindText: leaf display text
//   - KindElement: a native node with props, children, an optional key and
//     an optional memo key
//   - KindPortal: a subtree rendered into a host node outside the declaring
//     parent's containment, identified by its key
//   - KindSlot: the mount point of a child component
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Prop("class", "card"), Key("main"),
//	    H2(Prop("text", "Title")),
//	    Button(Prop("text", "Inc"), OnCommand(inc)),
//	)
//
// # Identity
//
// Identity across renders is structural. Text nodes are interchangeable,
// elements match when tag and key match, portals and slots match by key.
// See SameNode and Equal.
package vdom
