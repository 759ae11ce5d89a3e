package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsPayload = `{
	"profile": {"screenName": "admin", "mail": "admin@example.com"},
	"userOptions": {"markdown": 1, "xmlrpcMarkdown": 0, "autoSave": 0, "defaultAllow": ["comment"]},
	"site": {"siteUrl": "http://example.com", "title": "Example", "allowRegister": 0, "allowXmlRpc": 0, "timezone": 28800},
	"storage": {"attachmentTypes": ["@image@"]},
	"reading": {"frontPageType": "recent"},
	"discussion": {},
	"notify": {},
	"permalink": {"postPattern": "/archives/[cid:digital]/", "pagePattern": "/[slug].html"},
	"languages": ["en_US"]
}`

// fakeBackend answers settings.get with a fixed payload and every
// save action with a params echo.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action string            `json:"action"`
			Params map[string]string `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Action == "settings.get" {
			fmt.Fprintf(w, `{"data": %s}`, settingsPayload)
			return
		}
		payload, err := json.Marshal(req.Params)
		require.NoError(t, err)
		fmt.Fprintf(w, `{"data": %s}`, payload)
	}))
}

// writeConfig writes a config file pointing at the backend and a db
// inside dir, returning the config path.
func writeConfig(t *testing.T, dir, endpoint string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("endpoint: %s\ntoken: test-token\ndefault_category: 1\n", endpoint)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// runCommand executes the root command with args, capturing stdout.
func runCommand(args ...string) (string, error) {
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRejectsBadFormat(t *testing.T) {
	_, err := runCommand("status", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestStatusWithoutSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "http://unused.invalid")

	out, err := runCommand("status", "--config", cfg)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "run quill pull first")
}

func TestPullStatusPushFlow(t *testing.T) {
	srv := fakeBackend(t)
	defer srv.Close()

	dir := t.TempDir()
	cfg := writeConfig(t, dir, srv.URL)

	out, err := runCommand("pull", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Pulled 8 sections")

	out, err = runCommand("status", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "No unsaved changes.")

	edits := filepath.Join(dir, "edits.yaml")
	require.NoError(t, os.WriteFile(edits, []byte("site:\n  title: Renamed\n"), 0o600))

	out, err = runCommand("status", "--config", cfg, "--edits", edits)
	require.NoError(t, err)
	assert.Contains(t, out, "1 unsaved change")
	assert.Contains(t, out, "site")

	out, err = runCommand("push", "--config", cfg, "--edits", edits)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 1 section")
	assert.Contains(t, out, "site")

	// The refreshed baseline was persisted, so the same edits now read
	// clean.
	out, err = runCommand("status", "--config", cfg, "--edits", edits)
	require.NoError(t, err)
	assert.Contains(t, out, "No unsaved changes.")

	// And nothing dirty means push is a no-op.
	out, err = runCommand("push", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to save.")

	// The save attempt landed in the audit log.
	out, err = runCommand("log", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "site")
	assert.Contains(t, out, "ok")
}

func TestStatusWarnsOnBadLanguageTag(t *testing.T) {
	srv := fakeBackend(t)
	defer srv.Close()

	dir := t.TempDir()
	cfg := writeConfig(t, dir, srv.URL)

	_, err := runCommand("pull", "--config", cfg)
	require.NoError(t, err)

	edits := filepath.Join(dir, "edits.yaml")
	require.NoError(t, os.WriteFile(edits, []byte("site:\n  lang: not a tag\n"), 0o600))

	out, err := runCommand("status", "--config", cfg, "--edits", edits)
	require.NoError(t, err)
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "language tag")
}

func TestStatusRejectsBadEdits(t *testing.T) {
	srv := fakeBackend(t)
	defer srv.Close()

	dir := t.TempDir()
	cfg := writeConfig(t, dir, srv.URL)

	_, err := runCommand("pull", "--config", cfg)
	require.NoError(t, err)

	edits := filepath.Join(dir, "edits.yaml")
	require.NoError(t, os.WriteFile(edits, []byte("sight:\n  title: typo\n"), 0o600))

	_, err = runCommand("status", "--config", cfg, "--edits", edits)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPushStopsAtFailingDomain(t *testing.T) {
	var actions []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action string            `json:"action"`
			Params map[string]string `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		actions = append(actions, req.Action)

		switch req.Action {
		case "settings.get":
			fmt.Fprintf(w, `{"data": %s}`, settingsPayload)
		case "settings.site.save":
			w.Write([]byte(`{"error": {"message": "db locked"}}`))
		default:
			payload, err := json.Marshal(req.Params)
			require.NoError(t, err)
			fmt.Fprintf(w, `{"data": %s}`, payload)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := writeConfig(t, dir, srv.URL)

	_, err := runCommand("pull", "--config", cfg)
	require.NoError(t, err)

	edits := filepath.Join(dir, "edits.yaml")
	require.NoError(t, os.WriteFile(edits, []byte(`
profile:
  screenName: root
site:
  title: Renamed
notify:
  host: smtp.example.com
`), 0o600))

	out, err := runCommand("push", "--config", cfg, "--edits", edits)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "save site")

	// Profile saved before the site failure; notify was never tried.
	assert.Equal(t, []string{
		"settings.get",
		"settings.user.profile.save",
		"settings.site.save",
	}, actions)

	// The profile baseline was persisted, so only the failed and
	// untried sections are still pending.
	out, err = runCommand("status", "--config", cfg, "--edits", edits)
	require.NoError(t, err)
	assert.Contains(t, out, "2 unsaved changes")
	assert.NotContains(t, out, "profile")
}

func TestPreview(t *testing.T) {
	srv := fakeBackend(t)
	defer srv.Close()

	dir := t.TempDir()
	cfg := writeConfig(t, dir, srv.URL)

	_, err := runCommand("pull", "--config", cfg)
	require.NoError(t, err)

	// Stored pattern: /archives/[cid:digital]/ has no slug.
	out, err := runCommand("preview", "--config", cfg, "--cid", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "http://example.com/archives/42/")

	// Explicit rule with a slug splits around the editable input.
	out, err = runCommand("preview", "--config", cfg, "--cid", "42",
		"--rule", "/archives/[year:digital:4]/[slug].html",
		"--created", "2024-03-07T10:30:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "http://example.com/archives/2024/{slug}.html")

	// Page pattern preview.
	out, err = runCommand("preview", "--config", cfg, "--cid", "9", "--page")
	require.NoError(t, err)
	assert.Contains(t, out, "http://example.com/{slug}.html")
}

func TestPushJSONCarriesToken(t *testing.T) {
	srv := fakeBackend(t)
	defer srv.Close()

	dir := t.TempDir()
	cfg := writeConfig(t, dir, srv.URL)

	_, err := runCommand("pull", "--config", cfg)
	require.NoError(t, err)

	edits := filepath.Join(dir, "edits.yaml")
	require.NoError(t, os.WriteFile(edits, []byte("site:\n  title: Renamed\n"), 0o600))

	out, err := runCommand("push", "--config", cfg, "--edits", edits, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Token)

	// The token on the envelope matches the one logged for the batch.
	logOut, err := runCommand("log", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, logOut, resp.Token)
}

func TestMissingConfigSurfacesConfigError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	out, err := runCommand("status", "--config", missing, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeConfig)
}

func TestPreviewCorruptSnapshotIsNotMissing(t *testing.T) {
	srv := fakeBackend(t)
	defer srv.Close()

	dir := t.TempDir()
	cfg := writeConfig(t, dir, srv.URL)

	_, err := runCommand("pull", "--config", cfg)
	require.NoError(t, err)

	db, err := sql.Open("sqlite3", filepath.Join(dir, "quill.db"))
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE snapshots SET payload = '{' WHERE domain = 'site'`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := runCommand("preview", "--config", cfg, "--cid", "42")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "decode site snapshot")
	assert.NotContains(t, out, "run quill pull first")
}

// Locks down the status command's machine-readable output shape.
// Regenerate with: go test ./internal/cli -update
func TestStatusGoldenJSON(t *testing.T) {
	srv := fakeBackend(t)
	defer srv.Close()

	dir := t.TempDir()
	cfg := writeConfig(t, dir, srv.URL)

	_, err := runCommand("pull", "--config", cfg)
	require.NoError(t, err)

	edits := filepath.Join(dir, "edits.yaml")
	require.NoError(t, os.WriteFile(edits, []byte("site:\n  title: Renamed\n"), 0o600))

	out, err := runCommand("status", "--config", cfg, "--edits", edits, "--format", "json")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "status_dirty_site", []byte(out))
}
