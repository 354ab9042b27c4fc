package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reliefcore/internal/reporting"
	"reliefcore/pkg/domain"
)

const seedYAML = `users:
  - id: U1
    name: Priya Nair
    role: volunteer
campaigns:
  - id: C1
    title: Flood recovery fund
    category: emergency
    target_amount: 1000
donations:
  - id: D1
    donor_name: Sam
    donor_email: sam@example.org
    amount: 200
    type: monetary
    campaign_id: C1
    status: completed
  - id: D2
    donor_name: Lee
    donor_email: lee@example.org
    amount: 50
    type: monetary
    campaign_id: C1
help_requests:
  - id: H1
    title: Insulin for two
    type: medical
    urgency: critical
    people_affected: 2
resources:
  - id: R1
    name: Water crates
    type: food
    quantity: 20
    unit: crates
volunteers:
  - id: V1
    name: Ana
    rating: 4.5
  - id: V2
    name: Ben
    rating: 3.9
assignments:
  - id: A1
    title: Sandbagging
    volunteers_needed: 2
staffing:
  - assignment_id: A1
    volunteer_id: V1
`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`env: test
storage:
  driver: sqlite
  sqlite_path: %s
archive:
  driver: fs
  fs_root: %s
log:
  level: error
`, filepath.Join(dir, "relief.db"), filepath.Join(dir, "archive"))
	path := filepath.Join(dir, "reliefcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed.yaml"), []byte(seedYAML), 0o600))
	return path
}

func execute(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := &App{}
	cmd := newRootCmd(app)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	app.close()
	return stdout.String(), stderr.String(), err
}

func TestLoadAndOperate(t *testing.T) {
	cfg := setup(t)
	seedPath := filepath.Join(filepath.Dir(cfg), "seed.yaml")

	out, _, err := execute(t, cfg, "load", seedPath)
	require.NoError(t, err)
	var counts map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &counts))
	assert.Equal(t, 2, counts[string(domain.EntityDonation)])
	assert.Equal(t, 2, counts[string(domain.EntityVolunteer)])

	out, _, err = execute(t, cfg, "complete-donation", "D2")
	require.NoError(t, err)
	assert.Equal(t, "donation D2 completed, Flood recovery fund raised 250 of 1000 from 2 donors\n", out)

	_, _, err = execute(t, cfg, "apply-donation", "D2")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyApplied)

	out, _, err = execute(t, cfg, "eligible", "A1")
	require.NoError(t, err)
	assert.Equal(t, "V2\tBen\t3.9\n", out)

	out, _, err = execute(t, cfg, "assign", "A1", "V2")
	require.NoError(t, err)
	assert.Equal(t, "Ben assigned to Sandbagging (2/2, in-progress)\n", out)

	_, _, err = execute(t, cfg, "assign", "A1", "V2")
	require.Error(t, err)

	out, _, err = execute(t, cfg, "complete-assignment", "A1")
	require.NoError(t, err)
	assert.Equal(t, "A1 completed\n", out)

	out, _, err = execute(t, cfg, "accept-request", "H1", "U1")
	require.NoError(t, err)
	assert.Equal(t, "H1 in-progress\n", out)
	out, _, err = execute(t, cfg, "fulfill-request", "H1")
	require.NoError(t, err)
	assert.Equal(t, "H1 fulfilled\n", out)

	out, _, err = execute(t, cfg, "distribute", "R1", "12")
	require.NoError(t, err)
	assert.Equal(t, "Water crates 8 crates (limited)\n", out)
	_, _, err = execute(t, cfg, "distribute", "R1", "many")
	require.Error(t, err)

	out, _, err = execute(t, cfg, "transition", "campaign", "C1", "pause")
	require.NoError(t, err)
	assert.Equal(t, "C1 paused\n", out)
	_, _, err = execute(t, cfg, "transition", "shelter", "C1", "pause")
	require.Error(t, err)

	out, _, err = execute(t, cfg, "summary")
	require.NoError(t, err)
	var summary reporting.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, int64(250), summary.TotalDonated)
	assert.Equal(t, 2, summary.UniqueDonors)
	assert.Equal(t, 2, summary.PeopleHelped)
	assert.Zero(t, summary.ActiveAssignments)
}

func TestExportAndLatestSummary(t *testing.T) {
	cfg := setup(t)

	_, _, err := execute(t, cfg, "latest-summary")
	require.Error(t, err)

	key, _, err := execute(t, cfg, "export-summary")
	require.NoError(t, err)
	key = strings.TrimSpace(key)
	assert.True(t, strings.HasPrefix(key, reporting.SummaryPrefix), key)
	assert.FileExists(t, filepath.Join(filepath.Dir(cfg), "archive", filepath.FromSlash(key)))

	out, _, err := execute(t, cfg, "latest-summary")
	require.NoError(t, err)
	assert.Contains(t, out, `"generated_at"`)
}

func TestSweepCampaignsCommand(t *testing.T) {
	cfg := setup(t)
	out, _, err := execute(t, cfg, "sweep-campaigns")
	require.NoError(t, err)
	assert.Equal(t, "0 campaigns closed\n", out)
}

func TestMetricsAndTraceFlags(t *testing.T) {
	cfg := setup(t)
	_, stderr, err := execute(t, cfg, "--metrics", "--trace", "sweep-campaigns")
	require.NoError(t, err)
	assert.Contains(t, stderr, `reliefcore_operations_total{operation="close_expired_campaigns",status="success"} 1`)
	assert.Contains(t, stderr, `"operation":"close_expired_campaigns"`)
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reliefcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: mongo\n"), 0o600))
	_, _, err := execute(t, path, "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestReadSeedErrors(t *testing.T) {
	_, err := readSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("campaigns: [\n"), 0o600))
	_, err = readSeed(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse seed")
}
