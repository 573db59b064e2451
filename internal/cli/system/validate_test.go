package system

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/courselit/internal/cli/clitest"
	cerrors "github.com/julianstephens/courselit/internal/errors"
	"github.com/julianstephens/courselit/internal/models"
)

func TestValidateCmd_Clean(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.Seed(t, ctx)

	if err := (&ValidateCmd{}).Run(ctx); err != nil {
		t.Fatalf("expected a clean report, got %v:\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "No conflicts detected.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestValidateCmd_ReportsConflicts(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.Seed(t, ctx)

	// D needs the failed B and is placed before it could be retaken.
	snap, err := ctx.Session(context.Background())
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if err := snap.Plan.AddCourse("D", 2, models.StatusInProgress); err != nil {
		t.Fatalf("failed to add course: %v", err)
	}
	if err := ctx.SavePlan(snap); err != nil {
		t.Fatalf("failed to save plan: %v", err)
	}

	err = (&ValidateCmd{}).Run(ctx)
	if !errors.Is(err, cerrors.ErrConflicts) {
		t.Fatalf("expected ErrConflicts, got %v", err)
	}
	if !strings.Contains(out.String(), "prerequisite_order") {
		t.Errorf("expected a prerequisite ordering conflict:\n%s", out.String())
	}
}
