package deps

import (
	"fmt"
	"strings"

	"github.com/julianstephens/courselit/internal/models"
	"github.com/julianstephens/courselit/internal/validation"
)

// Node is one course in a dependency tree. A course reachable along several
// paths is expanded once; later occurrences are leaves with Repeated set.
type Node struct {
	Course   models.Course
	Children []*Node
	Repeated bool
}

// Tree builds a depth-first tree rooted at courseID. Children follow catalog order.
func (r *Resolver) Tree(courseID string, dir Direction) (*Node, []validation.Conflict, error) {
	root, ok := r.lookup.Get(courseID)
	if !ok {
		return nil, nil, fmt.Errorf("course not found: %s", courseID)
	}

	var warnings []validation.Conflict
	expanded := make(map[string]bool)

	var build func(course models.Course) *Node
	build = func(course models.Course) *Node {
		node := &Node{Course: course}
		if expanded[course.ID] {
			node.Repeated = true
			return node
		}
		expanded[course.ID] = true

		var children []models.Course
		for _, id := range r.neighbors(course, dir) {
			child, ok := r.lookup.Get(id)
			if !ok {
				warnings = append(warnings, unresolved(course.ID, id))
				continue
			}
			children = append(children, child)
		}
		r.sortCatalog(children)

		for _, child := range children {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	return build(root), warnings, nil
}

// Render draws the tree with box-drawing branches, one course per line.
func (n *Node) Render() string {
	var b strings.Builder
	b.WriteString(n.label())
	b.WriteString("\n")
	n.renderChildren(&b, "")
	return b.String()
}

func (n *Node) renderChildren(b *strings.Builder, prefix string) {
	for i, child := range n.Children {
		branch, indent := "├── ", "│   "
		if i == len(n.Children)-1 {
			branch, indent = "└── ", "    "
		}
		b.WriteString(prefix + branch + child.label() + "\n")
		child.renderChildren(b, prefix+indent)
	}
}

func (n *Node) label() string {
	s := n.Course.ID
	if n.Course.Name != "" {
		s += " " + n.Course.Name
	}
	if n.Repeated {
		s += " (see above)"
	}
	return s
}
