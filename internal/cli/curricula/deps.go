package curricula

import (
	"context"
	"strings"

	"github.com/julianstephens/courselit/internal/cli"
	"github.com/julianstephens/courselit/internal/deps"
	"github.com/julianstephens/courselit/internal/validation"
)

type DepsCmd struct {
	Course     string `arg:"" help:"Course ID."`
	Dependents bool   `help:"Walk to the courses that require COURSE instead of its prerequisites."`
	Tree       bool   `help:"Print the walk as a tree instead of distance layers."`
}

func (c *DepsCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}

	dir := deps.Prerequisites
	if c.Dependents {
		dir = deps.Dependents
	}
	resolver := snap.Resolver()

	if c.Tree {
		node, warnings, err := resolver.Tree(c.Course, dir)
		if err != nil {
			return err
		}
		ctx.Print(node.Render())
		printWarnings(ctx, warnings)
		return nil
	}

	closure, err := resolver.Closure(c.Course, dir)
	if err != nil {
		return err
	}
	ctx.Printf("%s %s: %d %s\n", closure.Root.ID, closure.Root.Name, closure.Size(), dir)
	for i, layer := range closure.Layers {
		ids := make([]string, len(layer))
		for j, course := range layer {
			ids[j] = course.ID
		}
		ctx.Printf("  %d: %s\n", i+1, strings.Join(ids, ", "))
	}
	printWarnings(ctx, closure.Warnings)
	return nil
}

func printWarnings(ctx *cli.Context, warnings []validation.Conflict) {
	for _, w := range warnings {
		ctx.Printf("warning: %s\n", w.Description)
	}
}
