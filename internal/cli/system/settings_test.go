package system

import (
	"strings"
	"testing"

	"github.com/julianstephens/courselit/internal/cli/clitest"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestSettingsCmd_List(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.Seed(t, ctx)

	if err := (&SettingsCmd{List: true}).Run(ctx); err != nil {
		t.Fatalf("settings list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Active Student:    42") {
		t.Errorf("expected active student in listing, got:\n%s", out.String())
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx, _ := clitest.New(t)
	clitest.Seed(t, ctx)

	cmd := &SettingsCmd{Curriculum: strPtr("cs"), Schedule: strPtr("cs-2025"), Plan: intPtr(2)}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	if settings.ActiveCurriculumID != "cs" || settings.ActiveScheduleID != "cs-2025" || settings.PlanNumber != 2 {
		t.Errorf("unexpected settings after update: %+v", settings)
	}
	if settings.ActiveStudentID != "42" {
		t.Errorf("untouched fields should keep their value, got student %q", settings.ActiveStudentID)
	}
}

func TestSettingsCmd_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cmd  *SettingsCmd
	}{
		{"unknown student", &SettingsCmd{Student: strPtr("nobody")}},
		{"unknown curriculum", &SettingsCmd{Curriculum: strPtr("law")}},
		{"plan number zero", &SettingsCmd{Plan: intPtr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := clitest.New(t)
			clitest.Seed(t, ctx)

			if err := tt.cmd.Run(ctx); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}
