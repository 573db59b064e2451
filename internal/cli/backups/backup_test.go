package backups

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/courselit/internal/backup"
	"github.com/julianstephens/courselit/internal/cli/clitest"
)

func TestBackupCreateAndList(t *testing.T) {
	ctx, out := clitest.New(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Available backups (1 total") {
		t.Errorf("expected one backup:\n%s", out.String())
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, _ := clitest.New(t)
	clitest.Seed(t, ctx)

	path, err := backup.NewManager(ctx.Store.GetConfigPath()).Create()
	if err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	settings.ActiveStudentID = ""
	if err := ctx.Store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	cancel := &BackupRestoreCmd{BackupFile: filepath.Base(path), In: strings.NewReader("n\n")}
	if err := cancel.Run(ctx); err != nil {
		t.Fatalf("cancelled restore failed: %v", err)
	}
	if s, _ := ctx.Store.GetSettings(); s.ActiveStudentID != "" {
		t.Fatalf("a cancelled restore must not touch the database")
	}

	confirm := &BackupRestoreCmd{BackupFile: filepath.Base(path), In: strings.NewReader("yes\n")}
	if err := confirm.Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if err := ctx.Store.Load(); err != nil {
		t.Fatalf("failed to reopen restored database: %v", err)
	}
	restored, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get restored settings: %v", err)
	}
	if restored.ActiveStudentID != "42" {
		t.Errorf("expected the backed up settings, got %+v", restored)
	}
}

func TestBackupRestore_NotFound(t *testing.T) {
	ctx, _ := clitest.New(t)

	if err := (&BackupRestoreCmd{BackupFile: "missing.db", Yes: true}).Run(ctx); err == nil {
		t.Errorf("expected an error for a missing backup")
	}
}
