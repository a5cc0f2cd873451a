//go:build integration

package integration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metalpriceservice/internal/preferences"
	"metalpriceservice/internal/rates"
	"metalpriceservice/internal/repository"
	"metalpriceservice/internal/testkit"
)

func TestCreateRefresh(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	id := uuid.New().String()
	got, err := repo.CreateRefresh(ctx, "USD", repository.SourceLive, id)
	if err != nil {
		t.Fatalf("CreateRefresh: %v", err)
	}
	if got != id {
		t.Fatalf("expected id %s, got %s", id, got)
	}

	r, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if r == nil {
		t.Fatal("expected refresh record, got nil")
	}
	if r.Base != "USD" || r.Source != repository.SourceLive {
		t.Fatalf("expected USD/live, got %s/%s", r.Base, r.Source)
	}
	if r.Status != repository.StatusPending {
		t.Fatalf("expected PENDING, got %s", r.Status)
	}
	if r.Snapshot != nil || r.ErrorMsg != nil {
		t.Fatal("expected no snapshot or error on a PENDING refresh")
	}
}

func TestCreateRefresh_Dedup(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	id1 := uuid.New().String()
	if _, err := repo.CreateRefresh(ctx, "USD", repository.SourceLive, id1); err != nil {
		t.Fatalf("first CreateRefresh: %v", err)
	}

	got, err := repo.CreateRefresh(ctx, "USD", repository.SourceLive, uuid.New().String())
	if err != nil {
		t.Fatalf("second CreateRefresh: %v", err)
	}
	if got != id1 {
		t.Fatalf("expected dedup to return %s, got %s", id1, got)
	}

	// A different base is not deduplicated.
	id3 := uuid.New().String()
	got, err = repo.CreateRefresh(ctx, "INR", repository.SourceLive, id3)
	if err != nil {
		t.Fatalf("CreateRefresh INR: %v", err)
	}
	if got != id3 {
		t.Fatalf("expected new id %s, got %s", id3, got)
	}
}

func TestCreateRefresh_AfterCompletion(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	snapshot := rates.MockSnapshot("USD", 1)
	insertCompleted(t, "USD", &snapshot, "")

	id := uuid.New().String()
	got, err := repo.CreateRefresh(ctx, "USD", repository.SourceMock, id)
	if err != nil {
		t.Fatalf("CreateRefresh after completion: %v", err)
	}
	if got != id {
		t.Fatalf("expected new id %s, got %s", id, got)
	}
}

func TestMarkRunning(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	id := uuid.New().String()
	if _, err := repo.CreateRefresh(ctx, "GBP", repository.SourceMock, id); err != nil {
		t.Fatalf("CreateRefresh: %v", err)
	}
	if err := repo.MarkRunning(ctx, id); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}

	t.Run("status is RUNNING", func(t *testing.T) {
		r, err := repo.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if r.Status != repository.StatusRunning {
			t.Fatalf("expected RUNNING, got %s", r.Status)
		}
	})

	t.Run("second call fails", func(t *testing.T) {
		if err := repo.MarkRunning(ctx, id); err == nil {
			t.Fatal("expected error for MarkRunning on non-PENDING record, got nil")
		}
	})
}

func TestMarkSuccess_StoresSnapshot(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	snapshot := rates.MockSnapshot("INR", 1700000000)
	id := insertCompleted(t, "INR", &snapshot, "")

	r, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, repository.StatusSuccess, r.Status)
	require.NotNil(t, r.Snapshot)
	assert.Equal(t, snapshot, *r.Snapshot)
	assert.Nil(t, r.ErrorMsg)
	require.NotNil(t, r.UpdatedAt)

	t.Run("completed refresh cannot be completed again", func(t *testing.T) {
		assert.Error(t, repo.MarkFailed(ctx, id, "late failure"))
		assert.Error(t, repo.MarkSuccess(ctx, id, snapshot))
	})
}

func TestMarkFailed_StoresMessage(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	id := insertCompleted(t, "USD", nil, "You have not supplied a valid API Access Key.")

	r, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusFailed, r.Status)
	assert.Nil(t, r.Snapshot)
	require.NotNil(t, r.ErrorMsg)
	assert.Equal(t, "You have not supplied a valid API Access Key.", *r.ErrorMsg)
}

func TestGetByID_NotFound(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)

	r, err := newRefreshRepo().GetByID(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestGetLatestCompleted(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := newRefreshRepo()

	r, err := repo.GetLatestCompleted(ctx)
	require.NoError(t, err)
	assert.Nil(t, r, "expected no completed refresh on an empty table")

	snapshot := rates.MockSnapshot("USD", 1)
	insertCompleted(t, "USD", &snapshot, "")
	time.Sleep(10 * time.Millisecond)
	failedID := insertCompleted(t, "EUR", nil, "Invalid base currency")

	// An in-flight refresh never counts as completed.
	_, err = repo.CreateRefresh(ctx, "GBP", repository.SourceMock, uuid.New().String())
	require.NoError(t, err)

	r, err = repo.GetLatestCompleted(ctx)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, failedID, r.ID)
	assert.Equal(t, repository.StatusFailed, r.Status)
}

func TestPreferenceRepository(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	repo := repository.NewPostgresPreferenceRepository(testkit.Global().DB())

	_, ok, err := repo.GetPreference(ctx, preferences.KeyAPIKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetPreference(ctx, preferences.KeyAPIKey, "first"))
	require.NoError(t, repo.SetPreference(ctx, preferences.KeyAPIKey, "second"))

	v, ok, err := repo.GetPreference(ctx, preferences.KeyAPIKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	t.Run("round trip through Load and Save", func(t *testing.T) {
		require.NoError(t, preferences.Save(ctx, repo, preferences.Preferences{APIKey: "k", BaseCurrency: "AED"}))

		got, err := preferences.Load(ctx, repo, preferences.Preferences{BaseCurrency: "USD"})
		require.NoError(t, err)
		assert.Equal(t, preferences.Preferences{APIKey: "k", BaseCurrency: "AED"}, got)
	})
}
