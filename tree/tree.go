// Package tree provides a tagged-union tree over decoded structured values.
//
// A [Tree] stores its nodes in a flat arena and addresses them by index.
// Composite nodes (lists and maps) hold the indices of their children, so a
// leaf can be replaced by path without rebuilding the surrounding structure:
// the replacement subtree is appended to the arena and the parent's child
// index is repointed.
//
//	t := tree.Build(map[string]any{"a": []any{"x", 1}})
//	for p, leaf := range t.Leaves() {
//		if s, ok := leaf.(string); ok {
//			_ = t.Set(p, strings.ToUpper(s))
//		}
//	}
//	v := t.Native() // map[string]any{"a": []any{"X", 1}}
package tree

import (
	"errors"
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a node.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// String returns the name of k.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ErrPath is returned when a path does not address a node in the tree.
var ErrPath = errors.New("path not found")

type node struct {
	leaf     any      // scalar value for null, string, number, bool
	keys     []string // sorted keys, map only
	children []int    // arena indices, list or map
	kind     Kind
}

// Tree is an arena of nodes rooted at index 0.
type Tree struct {
	nodes []node
}

// Build constructs a tree from a native value made of map[string]any, []any,
// and scalars. Scalars of unrecognized types are stored as opaque leaves of
// kind [KindNull] unless nil.
func Build(v any) *Tree {
	t := &Tree{}
	t.add(v)

	return t
}

// add appends the subtree for v to the arena and returns its root index.
func (t *Tree) add(v any) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{})

	switch val := v.(type) {
	case map[string]any:
		keys := slices.Sorted(maps.Keys(val))
		children := make([]int, len(keys))

		for i, k := range keys {
			children[i] = t.add(val[k])
		}

		t.nodes[idx] = node{kind: KindMap, keys: keys, children: children}

	case []any:
		children := make([]int, len(val))

		for i, e := range val {
			children[i] = t.add(e)
		}

		t.nodes[idx] = node{kind: KindList, children: children}

	case []string:
		children := make([]int, len(val))

		for i, e := range val {
			children[i] = t.add(e)
		}

		t.nodes[idx] = node{kind: KindList, children: children}

	case string:
		t.nodes[idx] = node{kind: KindString, leaf: val}

	case bool:
		t.nodes[idx] = node{kind: KindBool, leaf: val}

	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		t.nodes[idx] = node{kind: KindNumber, leaf: val}

	default:
		t.nodes[idx] = node{kind: KindNull, leaf: val}
	}

	return idx
}

// Kind returns the kind of the root node.
func (t *Tree) Kind() Kind {
	if t == nil || len(t.nodes) == 0 {
		return KindNull
	}

	return t.nodes[0].kind
}

// IsComposite reports whether the root is a list or a map.
func (t *Tree) IsComposite() bool {
	k := t.Kind()

	return k == KindList || k == KindMap
}

// Leaves returns a depth-first iterator over every scalar node and its path.
// Map children are visited in sorted key order. It is safe to call
// [Tree.Set] on the yielded path during iteration; a replaced subtree is not
// itself visited.
func (t *Tree) Leaves() iter.Seq2[Path, any] {
	return func(yield func(Path, any) bool) {
		if t == nil || len(t.nodes) == 0 {
			return
		}

		t.walk(0, nil, yield)
	}
}

func (t *Tree) walk(idx int, path Path, yield func(Path, any) bool) bool {
	n := t.nodes[idx]

	switch n.kind {
	case KindMap:
		for i, k := range n.keys {
			// re-read the child index: a previous yield may have replaced it
			if !t.walk(t.nodes[idx].children[i], path.Key(k), yield) {
				return false
			}
		}

		return true

	case KindList:
		for i := range n.children {
			if !t.walk(t.nodes[idx].children[i], path.Index(i), yield) {
				return false
			}
		}

		return true

	default:
		return yield(slices.Clone(path), n.leaf)
	}
}

// locate returns the arena index of the node addressed by p, along with the
// parent index and child slot (-1 for the root).
func (t *Tree) locate(p Path) (idx, parent, slot int, err error) {
	if t == nil || len(t.nodes) == 0 {
		return 0, 0, 0, ErrPath
	}

	idx, parent, slot = 0, -1, -1

	for _, step := range p {
		n := t.nodes[idx]

		switch {
		case step.IsIndex && n.kind == KindList:
			if step.Index < 0 || step.Index >= len(n.children) {
				return 0, 0, 0, ErrPath
			}

			parent, slot, idx = idx, step.Index, n.children[step.Index]

		case !step.IsIndex && n.kind == KindMap:
			i, ok := slices.BinarySearch(n.keys, step.Key)
			if !ok {
				return 0, 0, 0, ErrPath
			}

			parent, slot, idx = idx, i, n.children[i]

		default:
			return 0, 0, 0, ErrPath
		}
	}

	return idx, parent, slot, nil
}

// Get returns the native value of the node addressed by p.
func (t *Tree) Get(p Path) (any, bool) {
	idx, _, _, err := t.locate(p)
	if err != nil {
		return nil, false
	}

	return t.native(idx), true
}

// Set replaces the node addressed by p with the subtree built from v.
// Setting the empty path replaces the root.
func (t *Tree) Set(p Path, v any) error {
	_, parent, slot, err := t.locate(p)
	if err != nil {
		return err
	}

	if parent < 0 {
		// rebuild in place so the root stays at index 0
		fresh := Build(v)
		t.nodes = fresh.nodes

		return nil
	}

	t.nodes[parent].children[slot] = t.add(v)

	return nil
}

// Native converts the tree back into map[string]any, []any, and scalars.
func (t *Tree) Native() any {
	if t == nil || len(t.nodes) == 0 {
		return nil
	}

	return t.native(0)
}

func (t *Tree) native(idx int) any {
	n := t.nodes[idx]

	switch n.kind {
	case KindMap:
		m := make(map[string]any, len(n.keys))
		for i, k := range n.keys {
			m[k] = t.native(n.children[i])
		}

		return m

	case KindList:
		l := make([]any, len(n.children))
		for i, c := range n.children {
			l[i] = t.native(c)
		}

		return l

	default:
		return n.leaf
	}
}

// Step is one element of a [Path]: a map key or a list index.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path addresses a node from the root of a tree.
type Path []Step

// Key returns a copy of p extended with a map key step.
func (p Path) Key(k string) Path {
	return append(slices.Clip(p), Step{Key: k})
}

// Index returns a copy of p extended with a list index step.
func (p Path) Index(i int) Path {
	return append(slices.Clip(p), Step{Index: i, IsIndex: true})
}

// String renders p as slash-separated steps, e.g. "servers/0/host".
func (p Path) String() string {
	parts := make([]string, len(p))

	for i, s := range p {
		if s.IsIndex {
			parts[i] = strconv.Itoa(s.Index)
		} else {
			parts[i] = s.Key
		}
	}

	return strings.Join(parts, "/")
}
