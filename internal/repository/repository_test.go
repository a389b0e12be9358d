package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
	"github.com/Boluski2/lendsqr-admin/internal/generator"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	return FromGenerator(generator.New(generator.Config{Seed: 99}))
}

func TestRepository_RecordsIsMemoized(t *testing.T) {
	calls := 0
	repo := New(func(ctx context.Context) ([]domain.User, error) {
		calls++
		return generator.New(generator.Config{Seed: 1}).Generate(ctx)
	})

	first, err := repo.Records(context.Background())
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	second, err := repo.Records(context.Background())
	if err != nil {
		t.Fatalf("records: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected loader to run once, ran %d times", calls)
	}
	if len(first) != 500 {
		t.Fatalf("expected 500 records, got %d", len(first))
	}
	if &first[0] != &second[0] {
		t.Fatal("expected the same collection instance on every call")
	}
}

func TestRepository_LoadFailureIsRetried(t *testing.T) {
	fail := true
	repo := New(func(ctx context.Context) ([]domain.User, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return []domain.User{{ID: "A", Status: domain.StatusActive, Tier: 1}}, nil
	})

	if _, err := repo.Records(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	fail = false
	users, err := repo.Records(context.Background())
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
}

func TestRepository_FindByID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	user, ok, err := repo.FindByID(ctx, "LSQFf587g10")
	if err != nil || !ok {
		t.Fatalf("expected user, ok=%v err=%v", ok, err)
	}
	if user.ID != "LSQFf587g10" {
		t.Fatalf("unexpected id %s", user.ID)
	}

	_, ok, err = repo.FindByID(ctx, "non-existent-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected not found")
	}
}

func TestRepository_SetStatusMutatesInPlace(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	records, err := repo.Records(ctx)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	target := records[3].ID

	updated, ok, err := repo.SetStatus(ctx, target, domain.StatusBlacklisted)
	if err != nil || !ok {
		t.Fatalf("set status: ok=%v err=%v", ok, err)
	}
	if updated.Status != domain.StatusBlacklisted {
		t.Fatalf("expected returned record to be blacklisted, got %s", updated.Status)
	}
	if records[3].Status != domain.StatusBlacklisted {
		t.Fatalf("expected shared collection to observe the change, got %s", records[3].Status)
	}

	_, ok, err = repo.SetStatus(ctx, "missing", domain.StatusActive)
	if err != nil || ok {
		t.Fatalf("expected not-found signal, ok=%v err=%v", ok, err)
	}

	_, _, err = repo.SetStatus(ctx, target, domain.Status("Suspended"))
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestRepository_SnapshotIsDetached(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	snap, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	snap[0].Status = domain.Status("mutated")
	snap[0].Guarantors[0].FullName = "mutated"

	records, _ := repo.Records(ctx)
	if records[0].Status == "mutated" || records[0].Guarantors[0].FullName == "mutated" {
		t.Fatal("snapshot shares memory with the collection")
	}
}

func TestRepository_CountByStatus(t *testing.T) {
	repo := newTestRepository(t)
	total, counts, err := repo.CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	sum := 0
	for _, n := range counts {
		sum += n
	}
	if total != 500 || sum != total {
		t.Fatalf("expected counts to cover 500 records, total=%d sum=%d", total, sum)
	}
}

func TestRepository_FromDataset(t *testing.T) {
	users, err := generator.New(generator.Config{Count: 4, Seed: 5}).Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	path, err := generator.WriteDataset(users, t.TempDir())
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	repo := FromDataset(path)
	got, err := repo.Records(context.Background())
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(got) != 4 || got[0].ID != users[0].ID {
		t.Fatalf("unexpected dataset contents: %d records", len(got))
	}

	missing := FromDataset(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := missing.Records(context.Background()); err == nil {
		t.Fatal("expected error for missing dataset")
	}
}
