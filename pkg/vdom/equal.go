package vdom

import (
	"reflect"
)

// Equal reports whether a and b describe the same rendered output, so that
// patching one onto the other would perform no host mutation.
//
// Elements with equal non-empty memo keys are equal regardless of their
// props and children.
func Equal(a, b *VNode) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindText:
		return a.Text == b.Text

	case KindPortal:
		return a.Key == b.Key && a.Target == b.Target && Equal(a.Child, b.Child)

	case KindSlot:
		return a.Key == b.Key && reflect.DeepEqual(a.Args, b.Args)

	case KindElement:
		if MemoMatch(a, b) {
			return true
		}
		if a.Tag != b.Tag || a.Key != b.Key || a.MemoKey != b.MemoKey ||
			len(a.Children) != len(b.Children) || !PropsEqual(a.Props, b.Props) {
			return false
		}
		for i := range a.Children {
			if !Equal(a.Children[i], b.Children[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// MemoMatch reports whether a and b are elements carrying the same non-empty memo key.
func MemoMatch(a, b *VNode) bool {
	return a != nil && b != nil &&
		a.Kind == KindElement && b.Kind == KindElement &&
		a.MemoKey != "" && a.MemoKey == b.MemoKey
}

// SameNode reports whether a and b are the same logical node, meaning b can
// be patched onto the host node currently representing a.
func SameNode(a, b *VNode) bool {
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindText:
		return true
	case KindPortal:
		return a.Key != "" && a.Key == b.Key
	case KindSlot:
		return a.Key == b.Key
	case KindElement:
		return a.Tag == b.Tag && a.Key == b.Key
	}
	return false
}

// PropsEqual compares two property maps.
func PropsEqual(a, b Props) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !PropEqual(av, bv) {
			return false
		}
	}
	return true
}

// PropEqual compares two property values.
//
// Functions compare by code identity: two closures created by the same
// literal are equal. Callbacks must therefore read component state through
// captured references rather than captured copies.
func PropEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !rb.IsValid() {
		return false
	}
	if ra.Kind() == reflect.Func || rb.Kind() == reflect.Func {
		if ra.Type() != rb.Type() {
			return false
		}
		if ra.IsNil() || rb.IsNil() {
			return ra.IsNil() == rb.IsNil()
		}
		return ra.Pointer() == rb.Pointer()
	}
	// Fallback to reflect for complex types
	return reflect.DeepEqual(a, b)
}

// ChangedProps returns the keys whose values differ between a and b,
// including keys present on only one side.
func ChangedProps(a, b Props) []string {
	var changed []string
	for k, av := range a {
		if bv, ok := b[k]; !ok || !PropEqual(av, bv) {
			changed = append(changed, k)
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			changed = append(changed, k)
		}
	}
	return changed
}
