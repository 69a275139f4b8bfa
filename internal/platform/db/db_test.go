package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"staffhub/internal/domain/access"
	"staffhub/internal/domain/users"
	"staffhub/internal/platform/config"
)

func TestMigrationFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_audit.sql", "0001_init.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "0003_dir.sql"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || files[0] != "0001_init.sql" || files[1] != "0002_audit.sql" {
		t.Fatalf("unexpected files %v", files)
	}
}

func TestRepositoryMigrationsPresent(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", "..", "migrations"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("expected at least one migration")
	}
}

func TestSeedCreatesSuperAdminOnce(t *testing.T) {
	ctx := context.Background()
	store := users.NewMemoryStore()
	svc := users.NewService(store)
	cfg := config.Config{SeedAdminEmail: "root@example.com", SeedAdminPassword: "change-me-please"}

	if err := Seed(ctx, svc, cfg); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := Seed(ctx, svc, cfg); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	page, err := store.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || page.Users[0].Role != access.RoleSuperAdmin {
		t.Fatalf("unexpected users %+v", page)
	}
}

func TestSeedSkipsWithoutCredentials(t *testing.T) {
	store := users.NewMemoryStore()
	if err := Seed(context.Background(), users.NewService(store), config.Config{SeedAdminEmail: "root@example.com"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	page, _ := store.List(context.Background(), 10, 0)
	if page.Total != 0 {
		t.Fatalf("expected no users, got %d", page.Total)
	}
}
