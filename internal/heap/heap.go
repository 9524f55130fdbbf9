/*
 * Copyright 2026, Iridium project contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package heap implements a per-process buddy allocator over a
// power-of-two region of logical address space. Unlike a tree of raw
// child pointers that can be nil or dangling, a node here is a sum
// type: free, allocated, or split with two owned children. There is
// no state in which a split node's children are ambiguously absent.
package heap

import "github.com/rcornwell/iridium/internal/ierr"

// status is the three-way state of a buddy tree node.
type status int

const (
	statusFree status = iota
	statusAllocated
	statusSplit
)

// node is one block of the buddy tree. Only statusSplit nodes carry
// children; the other two statuses own no subtree.
type node struct {
	start    uint32
	size     uint32
	stat     status
	children *splitChildren
}

// splitChildren holds the two owned halves of a split node. Its mere
// presence (non-nil) is equivalent to stat == statusSplit; there is no
// path that sets one without the other.
type splitChildren struct {
	left, right *node
}

// Tree is a buddy allocator rooted over [start, start+size).
type Tree struct {
	root *node
	size uint32
}

// New builds a tree with a single free root of the given size, which
// must be a power of two.
func New(start, size uint32) *Tree {
	return &Tree{
		root: &node{start: start, size: size, stat: statusFree},
		size: size,
	}
}

// Size returns the total size of the region the tree covers.
func (t *Tree) Size() uint32 {
	return t.size
}

// Allocate walks the tree left subtree first, takes the first free
// block that fits size, splits it while half of it still fits, and
// marks the resulting block Allocated, returning its start address. A
// smaller free block further right is not preferred over a larger one
// on the left.
func (t *Tree) Allocate(size uint32) (uint32, error) {
	if size == 0 || size > t.size {
		return 0, &ierr.ResourceError{Resource: "heap"}
	}
	addr, ok := allocate(t.root, size)
	if !ok {
		return 0, &ierr.ResourceError{Resource: "heap"}
	}
	return addr, nil
}

func allocate(n *node, size uint32) (uint32, bool) {
	switch n.stat {
	case statusAllocated:
		return 0, false
	case statusSplit:
		if addr, ok := allocate(n.children.left, size); ok {
			return addr, true
		}
		return allocate(n.children.right, size)
	case statusFree:
		if n.size < size {
			return 0, false
		}
		if n.size/2 >= size && n.size != 0 {
			half := n.size / 2
			n.children = &splitChildren{
				left:  &node{start: n.start, size: half, stat: statusFree},
				right: &node{start: n.start + half, size: half, stat: statusFree},
			}
			n.stat = statusSplit
			n.size = 0 // size now lives on the children; root extent tracked by Tree.size
			if addr, ok := allocate(n.children.left, size); ok {
				return addr, true
			}
			return allocate(n.children.right, size)
		}
		n.stat = statusAllocated
		return n.start, true
	}
	return 0, false
}

// Free locates the allocated block whose start address matches addr,
// marks it Free, and coalesces back up the tree wherever both children
// of a split node are now free.
func (t *Tree) Free(addr uint32) bool {
	return free(t.root, addr)
}

func free(n *node, addr uint32) bool {
	switch n.stat {
	case statusAllocated:
		if n.start == addr {
			n.stat = statusFree
			return true
		}
		return false
	case statusSplit:
		if addr >= n.children.right.start {
			if !free(n.children.right, addr) {
				return false
			}
		} else {
			if !free(n.children.left, addr) {
				return false
			}
		}
		if n.children.left.stat == statusFree && n.children.right.stat == statusFree {
			n.size = n.children.left.size * 2
			n.children = nil
			n.stat = statusFree
		}
		return true
	default:
		return false
	}
}

// IsSingleFreeRoot reports whether the tree has fully coalesced back
// to one free block covering the whole region, used by tests to check
// the post-free-all invariant.
func (t *Tree) IsSingleFreeRoot() bool {
	return t.root.stat == statusFree && t.root.size == t.size
}
