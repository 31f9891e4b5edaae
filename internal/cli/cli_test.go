package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icancodefyi/sarthi-ai/internal/directory"
	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/config"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/integrity"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/jwt"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/qr"
	"github.com/icancodefyi/sarthi-ai/internal/repository"
	"github.com/icancodefyi/sarthi-ai/internal/service"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`
database:
  path: %s
jwt:
  secret_key: cli-secret
log:
  level: error
`, filepath.Join(dir, "sarthi.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashCommand(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "payload.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"b": 1.50, "a": {"z": "<x>", "y": [2, 1]}}`), 0o600))

	out, err := run(t, "--config", writeConfig(t, dir), "hash", doc, "--canonical")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"a":{"y":[2,1],"z":"<x>"},"b":1.50}`, lines[0])
	assert.Equal(t, integrity.Sum(lines[0]), lines[1])
}

func TestHashCommandRejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"a":`), 0o600))

	_, err := run(t, "--config", writeConfig(t, dir), "hash", doc)
	assert.ErrorContains(t, err, "invalid JSON")
}

func seedReport(t *testing.T, dbPath string) *model.Report {
	t.Helper()
	db, err := repository.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	encoder, err := qr.NewEncoder(qr.DefaultConfig())
	require.NoError(t, err)
	users := directory.NewMemoryUsers([]model.User{config.DefaultUser()})
	reports := service.NewReportService(db, repository.NewDatasetRepo(db), repository.NewReportRepo(db), users, encoder, "https://sarthi.example")

	report, err := reports.Assemble(context.Background(), service.AssembleInput{
		Dataset: &model.Dataset{
			ID:           "ds-cli",
			UserID:       "mock-user-001",
			OriginalName: "rainfall.csv",
			Status:       model.DatasetStatusCompleted,
			Analytics:    &model.Analytics{TotalRecords: 10, RiskScore: 12},
			AIReport:     &model.AIReport{ExecutiveSummary: "Stable", ConfidenceScore: 90},
			CreatedAt:    time.Now(),
		},
		Owner: model.UserInfo{ID: "mock-user-001", Name: "Demo User"},
	})
	require.NoError(t, err)
	return report
}

func TestVerifyCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	report := seedReport(t, filepath.Join(dir, "sarthi.db"))

	out, err := run(t, "--config", cfgPath, "verify", report.ReportID)
	require.NoError(t, err)
	assert.Contains(t, out, "Status:     verified")
	assert.Contains(t, out, "Dataset:    rainfall.csv")
	assert.Contains(t, out, report.IntegrityHash)

	_, err = run(t, "--config", cfgPath, "verify", "no-such-report")
	assert.ErrorIs(t, err, service.ErrReportNotFound)
}

func TestTokenCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	out, err := run(t, "--config", cfgPath, "token", "mock-user-001")
	require.NoError(t, err)

	claims, err := jwt.ValidateToken(config.JWTConfig{SecretKey: "cli-secret"}, strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "mock-user-001", claims.UserID)

	_, err = run(t, "--config", cfgPath, "token", "nobody")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
