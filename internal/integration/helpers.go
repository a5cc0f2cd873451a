//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"metalpriceservice/internal/rates"
	"metalpriceservice/internal/repository"
	"metalpriceservice/internal/testkit"
)

func resetTestData(t *testing.T) {
	t.Helper()
	testkit.Global().Reset(t)
}

// testContext returns a context with a 30-second deadline tied to the test's cleanup.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newRefreshRepo() repository.RefreshRepository {
	return repository.NewPostgresRefreshRepository(testkit.Global().DB())
}

// insertCompleted records a refresh for base and drives it to SUCCESS with
// snapshot, or to FAILED with failMsg when snapshot is nil.
func insertCompleted(t *testing.T, base string, snapshot *rates.Snapshot, failMsg string) string {
	t.Helper()
	ctx := testContext(t)
	repo := newRefreshRepo()

	id := uuid.New().String()
	if _, err := repo.CreateRefresh(ctx, base, repository.SourceMock, id); err != nil {
		t.Fatalf("CreateRefresh: %v", err)
	}
	if err := repo.MarkRunning(ctx, id); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}
	if snapshot != nil {
		if err := repo.MarkSuccess(ctx, id, *snapshot); err != nil {
			t.Fatalf("MarkSuccess: %v", err)
		}
		return id
	}
	if err := repo.MarkFailed(ctx, id, failMsg); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	return id
}
