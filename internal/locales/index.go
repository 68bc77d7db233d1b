package locales

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a locale identifier is not in the index.
	ErrNotFound = errors.New("locale not found")

	// ErrEmptyIndex is returned when no locale index has been published or a
	// lookup runs against an index with no locales.
	ErrEmptyIndex = errors.New("locale index is empty")
)

// ValidationError reports structural problems found while building an index:
// duplicate identifiers, dangling parents, or records unreachable from the
// world root. An index that fails validation is never published.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid locale records: %s", strings.Join(e.Problems, "; "))
}

// Index is an immutable snapshot of every known locale. Concurrent readers
// share it freely; rebuilds produce a fresh Index and swap it in via Publish.
type Index struct {
	records  map[string]Locale
	children map[string][]string
	finder   *Finder
}

// Build validates records and constructs a new Index. The world root is added
// implicitly when absent. Build never mutates its input slice.
func Build(records []Locale) (*Index, error) {
	byName := make(map[string]Locale, len(records)+1)
	var problems []string

	for _, rec := range records {
		if rec.Name == "" {
			problems = append(problems, "record with empty identifier")
			continue
		}
		if _, dup := byName[rec.Name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate identifier %q", rec.Name))
			continue
		}
		byName[rec.Name] = rec
	}

	if _, ok := byName[RootName]; !ok {
		byName[RootName] = Locale{Name: RootName, LongName: "World"}
	}

	children := make(map[string][]string, len(byName))
	for name, rec := range byName {
		if name == RootName {
			if rec.Parent != "" {
				problems = append(problems, fmt.Sprintf("root %q must not have a parent", RootName))
			}
			continue
		}
		if rec.Parent == "" {
			problems = append(problems, fmt.Sprintf("locale %q has no parent", name))
			continue
		}
		if _, ok := byName[rec.Parent]; !ok {
			problems = append(problems, fmt.Sprintf("locale %q references unknown parent %q", name, rec.Parent))
			continue
		}
		children[rec.Parent] = append(children[rec.Parent], name)
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	for _, names := range children {
		sort.Strings(names)
	}

	// Every record must be reachable from the root by child links; anything
	// left over sits on a parent cycle.
	reached := make(map[string]bool, len(byName))
	queue := []string{RootName}
	reached[RootName] = true
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, child := range children[name] {
			if !reached[child] {
				reached[child] = true
				queue = append(queue, child)
			}
		}
	}
	for name := range byName {
		if !reached[name] {
			problems = append(problems, fmt.Sprintf("locale %q is not reachable from %q", name, RootName))
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, &ValidationError{Problems: problems}
	}

	ix := &Index{
		records:  byName,
		children: children,
	}
	ix.finder = NewFinder(ix)
	return ix, nil
}

// Get returns the record for the given identifier.
func (ix *Index) Get(name string) (Locale, error) {
	rec, ok := ix.records[name]
	if !ok {
		return Locale{}, ErrNotFound
	}
	return rec, nil
}

// ChildrenOf returns the direct children of the given locale, ordered
// lexicographically by identifier. Leaf locales yield an empty slice.
func (ix *Index) ChildrenOf(name string) ([]Locale, error) {
	if _, ok := ix.records[name]; !ok {
		return nil, ErrNotFound
	}
	names := ix.children[name]
	out := make([]Locale, 0, len(names))
	for _, child := range names {
		out = append(out, ix.records[child])
	}
	return out, nil
}

// AllPoints returns the coordinates of every locale of the given type. It
// feeds the nearest-neighbor searchers; the world root is never included.
func (ix *Index) AllPoints(localeType string) []Point {
	var points []Point
	for name, rec := range ix.records {
		if name == RootName || DetermineLocaleType(name) != localeType {
			continue
		}
		points = append(points, Point{Name: name, Latitude: rec.Latitude, Longitude: rec.Longitude})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Name < points[j].Name })
	return points
}

// Len reports the number of locales in the index, root included.
func (ix *Index) Len() int {
	return len(ix.records)
}

// Hierarchy holds a locale with its immediate relatives: the parent (nil for
// the root) and direct children only, never the full chain or subtree.
type Hierarchy struct {
	Locale   Locale
	Parent   *Locale
	Children []Locale
}

// HierarchyOf resolves a locale plus its parent and direct children.
func (ix *Index) HierarchyOf(name string) (Hierarchy, error) {
	rec, err := ix.Get(name)
	if err != nil {
		return Hierarchy{}, err
	}

	h := Hierarchy{Locale: rec}
	if rec.Parent != "" {
		parent := ix.records[rec.Parent]
		h.Parent = &parent
	}
	h.Children, _ = ix.ChildrenOf(name)
	return h, nil
}
