package staging

import "slices"

// PathSet is an insertion-ordered set of paths.
type PathSet struct {
	paths []string
}

// Add appends paths not already present. Empty strings are ignored.
func (s *PathSet) Add(paths ...string) {
	for _, p := range paths {
		if p == "" || s.Contains(p) {
			continue
		}
		s.paths = append(s.paths, p)
	}
}

// Delete removes path if present.
func (s *PathSet) Delete(path string) {
	s.paths = slices.DeleteFunc(s.paths, func(p string) bool { return p == path })
}

// Contains reports whether path is in the set.
func (s *PathSet) Contains(path string) bool {
	return slices.Contains(s.paths, path)
}

// Len returns the number of paths.
func (s *PathSet) Len() int { return len(s.paths) }

// Paths returns a copy of the paths in insertion order.
func (s *PathSet) Paths() []string {
	return slices.Clone(s.paths)
}
