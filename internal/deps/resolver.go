package deps

import (
	"fmt"
	"sort"

	"github.com/julianstephens/courselit/internal/curriculum"
	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/validation"
)

type Direction int

const (
	// Prerequisites walks from a course to the courses it requires.
	Prerequisites Direction = iota
	// Dependents walks from a course to the courses that require it.
	Dependents
)

func (d Direction) String() string {
	if d == Dependents {
		return "dependents"
	}
	return "prerequisites"
}

// Closure is a transitive closure grouped by distance from the root.
// Layers[0] holds the direct neighbors.
type Closure struct {
	Root     models.Course
	Layers   [][]models.Course
	Warnings []validation.Conflict
}

// IDs returns every course ID in the closure, layer by layer.
func (c Closure) IDs() []string {
	var ids []string
	for _, layer := range c.Layers {
		for _, course := range layer {
			ids = append(ids, course.ID)
		}
	}
	return ids
}

// Size returns the number of courses in the closure, excluding the root.
func (c Closure) Size() int {
	n := 0
	for _, layer := range c.Layers {
		n += len(layer)
	}
	return n
}

// Resolver answers closure queries over one curriculum lookup.
type Resolver struct {
	lookup  *curriculum.Lookup
	reverse map[string][]string
}

// NewResolver builds the reverse-edge map once. Edges pointing at unknown
// courses are left out of it.
func NewResolver(lookup *curriculum.Lookup) *Resolver {
	r := &Resolver{
		lookup:  lookup,
		reverse: make(map[string][]string),
	}
	for _, course := range lookup.Courses() {
		for _, pre := range course.Prerequisites {
			if lookup.Has(pre) {
				r.reverse[pre] = append(r.reverse[pre], course.ID)
			}
		}
	}
	return r
}

// Ancestors returns the prerequisite closure of a course.
func (r *Resolver) Ancestors(courseID string) (Closure, error) {
	return r.closure(courseID, Prerequisites)
}

// Descendants returns every course that requires courseID, directly or not.
func (r *Resolver) Descendants(courseID string) (Closure, error) {
	return r.closure(courseID, Dependents)
}

// Closure dispatches on direction.
func (r *Resolver) Closure(courseID string, dir Direction) (Closure, error) {
	return r.closure(courseID, dir)
}

func (r *Resolver) closure(courseID string, dir Direction) (Closure, error) {
	root, ok := r.lookup.Get(courseID)
	if !ok {
		return Closure{}, fmt.Errorf("course not found: %s", courseID)
	}

	result := Closure{Root: root}
	visited := map[string]bool{root.ID: true}
	reported := make(map[string]bool)
	frontier := []models.Course{root}

	for len(frontier) > 0 {
		var next []models.Course
		for _, course := range frontier {
			for _, id := range r.neighbors(course, dir) {
				if visited[id] {
					continue
				}
				neighbor, ok := r.lookup.Get(id)
				if !ok {
					key := course.ID + "->" + id
					if !reported[key] {
						reported[key] = true
						result.Warnings = append(result.Warnings, unresolved(course.ID, id))
					}
					continue
				}
				visited[id] = true
				next = append(next, neighbor)
			}
		}
		if len(next) == 0 {
			break
		}
		r.sortCatalog(next)
		result.Layers = append(result.Layers, next)
		frontier = next
	}
	return result, nil
}

func (r *Resolver) neighbors(course models.Course, dir Direction) []string {
	if dir == Dependents {
		return r.reverse[course.ID]
	}
	return course.Prerequisites
}

func (r *Resolver) sortCatalog(courses []models.Course) {
	sort.SliceStable(courses, func(i, j int) bool {
		a, _ := r.lookup.Index(courses[i].ID)
		b, _ := r.lookup.Index(courses[j].ID)
		return a < b
	})
}

func unresolved(courseID, prereqID string) validation.Conflict {
	return validation.Conflict{
		Type:        validation.ConflictUnresolvedPrerequisite,
		Description: fmt.Sprintf("course %s lists unknown prerequisite %s", courseID, prereqID),
		Items:       []string{courseID, prereqID},
	}
}
