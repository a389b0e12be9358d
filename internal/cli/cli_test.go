package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
	"github.com/Boluski2/lendsqr-admin/internal/generator"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LENDSQR_CONFIG", "")
	t.Setenv("STORAGE_DRIVER", "memory")

	var out bytes.Buffer
	root := Root()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "lendsqr 1.2.3" {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestGenerate_Stdout(t *testing.T) {
	out, err := run(t, "generate", "--stdout=true", "--count", "5", "--seed", "3")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var users []domain.User
	if err := json.Unmarshal([]byte(out), &users); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(users) != 5 {
		t.Fatalf("expected 5 users, got %d", len(users))
	}
	if users[0].ID != "LSQFf587g01" || users[4].ID != "LSQFf587g05" {
		t.Fatalf("unexpected ids %s..%s", users[0].ID, users[4].ID)
	}
}

func TestGenerate_DatasetThenStats(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "generate", "--stdout=false", "--count", "12", "--seed", "9", "--output-dir", dir)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "Generated 12 users") {
		t.Fatalf("unexpected output %q", out)
	}

	t.Setenv("GENERATOR_DATASET_PATH", filepath.Join(dir, generator.DatasetFile))
	out, err = run(t, "stats", "--json=true")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats domain.UsersStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalUsers != 12 {
		t.Fatalf("expected 12 users, got %d", stats.TotalUsers)
	}
	if stats.UsersWithLoans != 3 || stats.UsersWithSavings != 4 {
		t.Fatalf("unexpected ratios %+v", stats)
	}
}

func TestStats_Table(t *testing.T) {
	t.Setenv("GENERATOR_COUNT", "20")
	out, err := run(t, "stats", "--json=false")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, label := range []string{"USERS", "ACTIVE USERS", "USERS WITH LOANS", "USERS WITH SAVINGS", "ORGANIZATIONS"} {
		if !strings.Contains(out, label) {
			t.Errorf("missing %q in output %q", label, out)
		}
	}
	if !strings.Contains(out, "20") {
		t.Errorf("expected total of 20 in output %q", out)
	}
}

func TestCacheWarm(t *testing.T) {
	t.Setenv("GENERATOR_COUNT", "20")
	out, err := run(t, "cache", "warm", "--first", "3", "--workers", "2")
	if err != nil {
		t.Fatalf("warm: %v", err)
	}
	if !strings.Contains(out, "Cached 3 users (3 total in cache)") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestConfigErrorStopsCommand(t *testing.T) {
	t.Setenv("SERVER_PORT", "0")
	if _, err := run(t, "stats"); err == nil {
		t.Fatal("expected config error")
	}
}
