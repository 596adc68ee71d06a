package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/kilianp07/telework/arcgis"
	"github.com/kilianp07/telework/core/model"
	"github.com/kilianp07/telework/infra/store"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yaml", "logging:\n  level: error\n")
	status := writeFile(t, dir, "status.csv", "Employee_Number,Employee_Name,Date,Status\n"+
		"1,Ada,2024-03-12,Telework\n2,Grace,2024-03-12,Office\n")
	commute := writeFile(t, dir, "commute.csv", "Employee_Number,Commute_Miles,Commute_Minutes,Work_Latitude,Work_Longitude,Home_Latitude,Home_Longitude,Flagged\n"+
		"1,12.5,20,34.05,-117.19,34.03,-117.04,False\n")
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "", "report", "-c", cfgFile, "--env-file", filepath.Join(dir, "none.env"),
		"--status", status, "--commute", commute, "--out-dir", outDir,
		"--avg-miles", "10", "--avg-minutes", "15")
	require.NoError(t, err)
	assert.Contains(t, out, "week of 2024-03-11: 2 employees, 1 telework days, 25.0 miles and 40 minutes avoided")
	assert.Contains(t, out, "1 employees used the average commute")
	assert.FileExists(t, filepath.Join(outDir, "telework_report.xlsx"))
}

func TestReportCommandMissingConfig(t *testing.T) {
	_, err := execute(t, "", "report", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "load config")
}

func TestLoginCommand(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yaml", "arcgis:\n  username: gis_admin\n  profile: agol\nlogging:\n  level: error\n")

	out, err := execute(t, "s3cret\n", "login", "-c", cfgFile, "--env-file", filepath.Join(dir, "none.env"))
	require.NoError(t, err)
	assert.Contains(t, out, `stored password for gis_admin in keyring service "agol"`)

	pw, err := keyring.Get("agol", "gis_admin")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
}

func TestEnvFileOverridesConfig(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yaml", "arcgis:\n  username: from_file\nlogging:\n  level: error\n")
	env := writeFile(t, dir, "test.env", "TW_ARCGIS__USERNAME=from_env\n")
	t.Cleanup(func() { _ = os.Unsetenv("TW_ARCGIS__USERNAME") })

	out, err := execute(t, "pw\n", "login", "-c", cfgFile, "--env-file", env)
	require.NoError(t, err)
	assert.Contains(t, out, "stored password for from_env")
}

func TestConfigCommandMasksSecrets(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yaml",
		"arcgis:\n  auth_mode: app\n  client_id: my-app\n  client_secret: hunter2\nlogging:\n  level: error\n")

	out, err := execute(t, "", "config", "-c", cfgFile, "--env-file", filepath.Join(dir, "none.env"))
	require.NoError(t, err)
	assert.Contains(t, out, "client_id: my-app")
	assert.Regexp(t, `client_secret: .\*{4}`, out)
	assert.NotContains(t, out, "hunter2")
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	none := filepath.Join(dir, "none.env")

	t.Run("store not configured", func(t *testing.T) {
		cfgFile := writeFile(t, dir, "nostore.yaml", "logging:\n  level: error\n")
		_, err := execute(t, "", "history", "42", "-c", cfgFile, "--env-file", none)
		assert.EqualError(t, err, "store.path is not configured")
	})

	t.Run("table", func(t *testing.T) {
		dbPath := filepath.Join(dir, "telework.db")
		st, err := store.NewSQLiteStore(dbPath)
		require.NoError(t, err)
		at := time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)
		require.NoError(t, st.SaveRun(context.Background(), "run-1", at, []model.CommuteResult{
			{EmployeeNumber: "42", Miles: 12.5, Minutes: 21.5, Flagged: false},
			{EmployeeNumber: "7", Miles: 3, Minutes: 8},
		}))
		require.NoError(t, st.Close())

		cfgFile := writeFile(t, dir, "store.yaml", "store:\n  path: "+dbPath+"\nlogging:\n  level: error\n")
		out, err := execute(t, "", "history", "42", "-c", cfgFile, "--env-file", none)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "COMPUTED RUN MILES MINUTES FLAGGED", strings.Join(strings.Fields(lines[0]), " "))
		assert.Equal(t, []string{"run-1", "12.50", "21.5", "false"}, strings.Fields(lines[1])[2:])

		out, err = execute(t, "", "history", "99", "-c", cfgFile, "--env-file", none)
		require.NoError(t, err)
		assert.Equal(t, "no commute recorded for 99\n", out)
	})
}

func TestCommuteCommand(t *testing.T) {
	keyring.MockInit()
	m := arcgis.NewMockServer()
	t.Cleanup(m.Close)
	m.Match("380 New York St", -117.1956, 34.0564, 100)
	m.Match("1 Yucaipa Blvd", -117.0431, 34.0336, 100)
	require.NoError(t, keyring.Set("mock", "mock", "pw"))

	dir := t.TempDir()
	roster := writeFile(t, dir, "roster.csv",
		"Employee_Number,Work_Address,Work_City,Work_State,Work_Zip,Home_Address,Home_City,Home_State,Home_Zip\n"+
			"1,380 New York St,Redlands,CA,92373,1 Yucaipa Blvd,Yucaipa,CA,92399\n"+
			"2,380 New York St,Redlands,CA,92373,,,,\n")
	dbPath := filepath.Join(dir, "telework.db")
	cfgFile := writeFile(t, dir, "config.yaml", "arcgis:\n"+
		"  username: mock\n"+
		"  portal_url: "+m.URL()+"\n"+
		"  geocode_url: "+m.URL()+"/geocode\n"+
		"  route_utilities_url: "+m.URL()+"/utilities\n"+
		"  poll_interval_seconds: 1\n"+
		"roster:\n  path: "+filepath.Join(dir, "missing.csv")+"\n"+
		"store:\n  path: "+dbPath+"\n"+
		"logging:\n  level: error\n")
	out := filepath.Join(dir, "commute.csv")

	stdout, err := execute(t, "", "commute", "-c", cfgFile, "--env-file", filepath.Join(dir, "none.env"),
		"--roster", roster, "--out", out)
	require.NoError(t, err)
	assert.Regexp(t, `run \S+: 2 employees, 1 routed, 1 flagged, 0 cached addresses`, stdout)
	assert.Contains(t, stdout, "wrote "+out)
	assert.FileExists(t, out)
	assert.Equal(t, 1, m.Stats().SubmitRequests)

	hist, err := execute(t, "", "history", "1", "-c", cfgFile, "--env-file", filepath.Join(dir, "none.env"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(hist), "\n"), 2)
}
