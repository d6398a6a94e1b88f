// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"iter"
	"maps"
	"slices"
)

// LibCollection is a deduplicated collection of resolved shared objects and
// the sonames they were resolved for.
type LibCollection struct {
	libs       map[string]string
	unresolved map[string]int
}

// Add records that soname resolved to path. It returns false if the path is
// already present.
func (c *LibCollection) Add(soname, path string) bool {
	if c.libs == nil {
		c.libs = make(map[string]string)
	}

	if _, exists := c.libs[path]; exists {
		return false
	}

	c.libs[path] = soname

	return true
}

// AddUnresolved records a soname no path was found for.
func (c *LibCollection) AddUnresolved(soname string) {
	if c.unresolved == nil {
		c.unresolved = make(map[string]int)
	}

	c.unresolved[soname]++
}

// Len returns the number of resolved libraries.
func (c *LibCollection) Len() int {
	return len(c.libs)
}

// Libs returns an iterator that iterates all libraries sorted by path.
func (c *LibCollection) Libs() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, path := range slices.Sorted(maps.Keys(c.libs)) {
			if !yield(path) {
				return
			}
		}
	}
}

// Unresolved returns an iterator that iterates all unresolved sonames sorted
// by name.
func (c *LibCollection) Unresolved() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range slices.Sorted(maps.Keys(c.unresolved)) {
			if !yield(name) {
				return
			}
		}
	}
}
