package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icancodefyi/sarthi-ai/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newDataset(id, userID string, created time.Time) *model.Dataset {
	return &model.Dataset{
		ID:           id,
		UserID:       userID,
		Filename:     id + ".csv",
		OriginalName: "rainfall.csv",
		Category:     model.CategoryAgricultural,
		Status:       model.DatasetStatusProcessing,
		Metadata:     model.DatasetMetadata{FileSize: 128},
		CSVContent:   "date,rain\n2024-01-01,3\n",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestOpenCreatesTablesIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sarthi.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "datasets", "reports"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestOpenInMemorySharesOneDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	repo := NewDatasetRepo(db)
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("ds-%d", i)
			if err := repo.Create(ctx, newDataset(id, "user-1", created.Add(time.Duration(i)*time.Minute))); err != nil {
				errs <- err
				return
			}
			got, err := repo.GetByID(ctx, "user-1", id)
			if err != nil {
				errs <- err
				return
			}
			if got == nil {
				errs <- fmt.Errorf("dataset %s not visible after insert", id)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := repo.List(ctx, "user-1", 50)
	require.NoError(t, err)
	assert.Len(t, list, workers)
}

func TestDatasetLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewDatasetRepo(openTestDB(t))
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newDataset("ds-1", "user-1", now)))

	got, err := repo.GetByID(ctx, "user-1", "ds-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.DatasetStatusProcessing, got.Status)
	assert.Nil(t, got.Analytics)
	assert.Nil(t, got.AIReport)
	assert.Empty(t, got.CSVContent)
	assert.True(t, now.Equal(got.CreatedAt))

	csv, err := repo.GetCSVContent(ctx, "ds-1")
	require.NoError(t, err)
	assert.Contains(t, csv, "rain")

	// Other users cannot see it
	other, err := repo.GetByID(ctx, "user-2", "ds-1")
	require.NoError(t, err)
	assert.Nil(t, other)

	growth := 12.5
	analytics := &model.Analytics{
		TotalRecords:   1000,
		Columns:        []string{"date", "rain"},
		GrowthPercent:  &growth,
		RiskScore:      42,
		MovingAverages: map[string][]float64{"rain": {1, 2, 3}},
	}
	require.NoError(t, repo.SetAnalytics(ctx, "ds-1", analytics, now.Add(time.Minute)))

	got, err = repo.GetByID(ctx, "user-1", "ds-1")
	require.NoError(t, err)
	assert.Equal(t, model.DatasetStatusAnalyzed, got.Status)
	require.NotNil(t, got.Analytics)
	assert.Equal(t, 42.0, got.Analytics.RiskScore)
	assert.Equal(t, 1000, got.Metadata.RowCount)
	assert.Equal(t, 2, got.Metadata.ColumnCount)
	assert.Equal(t, []string{"date", "rain"}, got.Metadata.Columns)
	assert.Equal(t, int64(128), got.Metadata.FileSize)

	aiReport := &model.AIReport{ExecutiveSummary: "Rainfall is stable.", ConfidenceScore: 88}
	require.NoError(t, repo.SetAIReport(ctx, "user-1", "ds-1", aiReport, now.Add(2*time.Minute)))

	got, err = repo.GetByID(ctx, "user-1", "ds-1")
	require.NoError(t, err)
	assert.Equal(t, model.DatasetStatusCompleted, got.Status)
	require.NotNil(t, got.AIReport)
	assert.Equal(t, 88.0, got.AIReport.ConfidenceScore)

	deleted, err := repo.Delete(ctx, "user-1", "ds-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, "user-1", "ds-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDatasetUpdatesOnMissingRow(t *testing.T) {
	ctx := context.Background()
	repo := NewDatasetRepo(openTestDB(t))
	now := time.Now()

	err := repo.SetStatus(ctx, "missing", model.DatasetStatusFailed, now)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	err = repo.SetAIReport(ctx, "user-1", "missing", &model.AIReport{}, now)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	ok, err := repo.SetLinkedFarmer(ctx, "user-1", "missing", nil, now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDatasetLinkedFarmer(t *testing.T) {
	ctx := context.Background()
	repo := NewDatasetRepo(openTestDB(t))
	now := time.Now()
	require.NoError(t, repo.Create(ctx, newDataset("ds-1", "user-1", now)))

	farmer := &model.LinkedFarmer{Aadhaar: "234567890123", Name: "Ramesh Kumar", Crops: []string{"wheat"}}
	ok, err := repo.SetLinkedFarmer(ctx, "user-1", "ds-1", farmer, now)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, "user-1", "ds-1")
	require.NoError(t, err)
	require.NotNil(t, got.LinkedFarmer)
	assert.Equal(t, "Ramesh Kumar", got.LinkedFarmer.Name)

	ok, err = repo.SetLinkedFarmer(ctx, "user-1", "ds-1", nil, now)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.GetByID(ctx, "user-1", "ds-1")
	require.NoError(t, err)
	assert.Nil(t, got.LinkedFarmer)
}

func TestDatasetListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewDatasetRepo(openTestDB(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newDataset("old", "user-1", base)))
	require.NoError(t, repo.Create(ctx, newDataset("new", "user-1", base.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newDataset("foreign", "user-2", base)))

	list, err := repo.List(ctx, "user-1", 50)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)

	list, err = repo.List(ctx, "user-1", 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	empty, err := repo.List(ctx, "nobody", 50)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func testReport(reportID, userID string, created time.Time) *model.Report {
	return &model.Report{
		ID:        "row-" + reportID,
		ReportID:  reportID,
		UserID:    userID,
		DatasetID: "ds-1",
		SnapshotData: model.SnapshotData{
			Analytics: model.Analytics{
				TotalRecords:   1000,
				RiskScore:      42,
				MovingAverages: map[string][]float64{"rain": {1, 2}},
			},
			AIReport: model.AIReport{ConfidenceScore: 88},
		},
		IntegrityHash: "abc123",
		QRCodeURL:     "data:image/png;base64,AAAA",
		CreatedAt:     created,
		HashPayload: map[string]any{
			"reportId":      reportID,
			"analyticsHash": `{"riskScore":42,"totalRecords":1000}`,
		},
	}
}

func TestReportInsertAndGet(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewReportRepo(db)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, nil, testReport("r-1", "user-1", now)))

	got, err := repo.GetByReportID(ctx, "r-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "abc123", got.IntegrityHash)
	assert.Equal(t, "data:image/png;base64,AAAA", got.QRCodeURL)
	assert.Equal(t, `{"riskScore":42,"totalRecords":1000}`, got.HashPayload["analyticsHash"])
	assert.True(t, now.Equal(got.CreatedAt))

	missing, err := repo.GetByReportID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// report ids are unique
	err = repo.Insert(ctx, nil, testReport("r-1", "user-1", now))
	assert.Error(t, err)
}

func TestReportInsertInsideTransaction(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewReportRepo(db)

	boom := errors.New("boom")
	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := repo.Insert(ctx, tx, testReport("r-tx", "user-1", time.Now())); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.GetByReportID(ctx, "r-tx")
	require.NoError(t, err)
	assert.Nil(t, got, "rolled back insert must not be visible")

	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		return repo.Insert(ctx, tx, testReport("r-tx", "user-1", time.Now()))
	})
	require.NoError(t, err)

	got, err = repo.GetByReportID(ctx, "r-tx")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestWithTxRepanics(t *testing.T) {
	db := openTestDB(t)
	assert.Panics(t, func() {
		_ = WithTx(context.Background(), db, func(tx *sql.Tx) error {
			panic("boom")
		})
	})
}

func TestReportListByUserStripsHeavyFields(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepo(openTestDB(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, nil, testReport("r-old", "user-1", base)))
	require.NoError(t, repo.Insert(ctx, nil, testReport("r-new", "user-1", base.Add(time.Hour))))
	require.NoError(t, repo.Insert(ctx, nil, testReport("r-other", "user-2", base)))

	list, err := repo.ListByUser(ctx, "user-1", 50)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r-new", list[0].ReportID)
	assert.Equal(t, "r-old", list[1].ReportID)
	for _, r := range list {
		assert.Empty(t, r.QRCodeURL)
		assert.Nil(t, r.SnapshotData.Analytics.MovingAverages)
		assert.Equal(t, 42.0, r.SnapshotData.Analytics.RiskScore)
	}
}

func TestUserUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(openTestDB(t))

	missing, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Upsert(ctx, &model.User{ID: "u-1", Name: "Asha", Email: "asha@example.org"}))
	got, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, model.PlanFree, got.PlanType)
	assert.NotEmpty(t, got.CreatedAt)

	require.NoError(t, repo.Upsert(ctx, &model.User{ID: "u-1", Name: "Asha R", PlanType: model.PlanPro}))
	got, err = repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha R", got.Name)
	assert.Equal(t, model.PlanPro, got.PlanType)
}
