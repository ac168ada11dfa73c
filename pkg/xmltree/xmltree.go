// Package xmltree provides traversal primitives over parsed XML element trees.
//
// Tags are compared in their prefixed form as written in the document ("w:ins"),
// the way WordprocessingML parts are conventionally addressed. All traversals are
// depth-first, pre-order and follow document order.
package xmltree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

var (
	ErrNoRoot        = errors.New("document has no root element")
	ErrMultipleRoots = errors.New("document has more than one root element")
)

// Parse parses data into a tree and returns its root element.
// The tree copies everything it needs, data can be discarded afterwards.
// Malformed input yields an error and no tree.
func Parse(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = false
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing xml: %w", err)
	}
	switch roots := doc.ChildElements(); len(roots) {
	case 0:
		return nil, ErrNoRoot
	case 1:
		return roots[0], nil
	}
	return nil, ErrMultipleRoots
}

// HasTag reports whether e's prefixed tag equals tag.
func HasTag(e *etree.Element, tag string) bool {
	return e != nil && e.FullTag() == tag
}

// TagContains reports whether e's prefixed tag contains substr.
func TagContains(e *etree.Element, substr string) bool {
	return e != nil && strings.Contains(e.FullTag(), substr)
}

// Walk visits node and all of its descendants. It stops as soon as fn returns false
// and reports whether the walk ran to completion.
func Walk(node *etree.Element, fn func(*etree.Element) bool) bool {
	if node == nil {
		return true
	}
	if !fn(node) {
		return false
	}
	for _, child := range node.ChildElements() {
		if !Walk(child, fn) {
			return false
		}
	}
	return true
}

// FindFirstDescendant returns the first element of the subtree rooted at node
// (node included) with the given tag, or nil.
func FindFirstDescendant(node *etree.Element, tag string) *etree.Element {
	var found *etree.Element
	Walk(node, func(e *etree.Element) bool {
		if HasTag(e, tag) {
			found = e
			return false
		}
		return true
	})
	return found
}

// ForEachDescendant calls visit for every element of the subtree rooted at node
// (node included) that satisfies match.
func ForEachDescendant(node *etree.Element, match func(*etree.Element) bool, visit func(*etree.Element)) {
	Walk(node, func(e *etree.Element) bool {
		if match(e) {
			visit(e)
		}
		return true
	})
}

// AnyDescendant reports whether some element of the subtree satisfies match.
// The traversal stops at the first match.
func AnyDescendant(node *etree.Element, match func(*etree.Element) bool) bool {
	return !Walk(node, func(e *etree.Element) bool {
		return !match(e)
	})
}

// DirectChildren returns the immediate children of node with the given tag.
func DirectChildren(node *etree.Element, tag string) []*etree.Element {
	if node == nil {
		return nil
	}
	var children []*etree.Element
	for _, child := range node.ChildElements() {
		if HasTag(child, tag) {
			children = append(children, child)
		}
	}
	return children
}

// FirstChild returns the first immediate child of node with the given tag, or nil.
func FirstChild(node *etree.Element, tag string) *etree.Element {
	if node == nil {
		return nil
	}
	for _, child := range node.ChildElements() {
		if HasTag(child, tag) {
			return child
		}
	}
	return nil
}

// TextOf returns the character data of e. A missing element or one without text yields "".
func TextOf(e *etree.Element) string {
	if e == nil {
		return ""
	}
	return e.Text()
}

// IntOf returns the text of e as a 32 bit integer, or 0 if it is missing or not numeric.
func IntOf(e *etree.Element) int {
	i, err := strconv.ParseInt(strings.TrimSpace(TextOf(e)), 10, 32)
	if err != nil {
		return 0
	}
	return int(i)
}

// Attribute returns the value of the attribute with the given prefixed name.
func Attribute(e *etree.Element, name string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attr {
		if a.FullKey() == name {
			return a.Value, true
		}
	}
	return "", false
}
