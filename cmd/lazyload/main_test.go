package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/lazyload/internal/config"
	"github.com/pders01/lazyload/internal/paging"
	"github.com/pders01/lazyload/internal/storage"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	w.Close()
	os.Stdout = old
	return <-outC
}

// isolate points HOME at a temp dir and resets the persistent flags.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LAZYLOAD_LOG_BACKEND", "nop")
	t.Setenv("LAZYLOAD_CACHE_BACKEND", "none")

	oldConfig, oldDB, oldQuiet := configPath, dbPath, quiet
	configPath, dbPath, quiet = "", "", true
	t.Cleanup(func() { configPath, dbPath, quiet = oldConfig, oldDB, oldQuiet })
	return home
}

func TestVersionCommand(t *testing.T) {
	out := captureStdout(t, func() { versionCmd.Run(nil, nil) })

	// Version is "dev" by default in tests
	if !strings.Contains(out, "lazyload dev") {
		t.Errorf("Expected version output to contain 'lazyload dev', got: %s", out)
	}
	if !strings.Contains(out, "Lazy contact browser") {
		t.Errorf("Expected version output to contain 'Lazy contact browser', got: %s", out)
	}
	if !strings.Contains(out, "github.com/pders01/lazyload") {
		t.Errorf("Expected version output to contain 'github.com/pders01/lazyload', got: %s", out)
	}
}

func TestGenerateConfigCommand(t *testing.T) {
	home := isolate(t)
	configFile := filepath.Join(home, ".config", "lazyload", "config.toml")

	out := captureStdout(t, func() { configGenCmd.Run(nil, nil) })

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		t.Errorf("Config file was not created at %s", configFile)
	}
	if !strings.Contains(out, "Generated default configuration at:") {
		t.Errorf("Expected output to contain 'Generated default configuration at:', got: %s", out)
	}

	cfg, err := config.Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Paging.PageSize)
}

func TestCollectionOptions(t *testing.T) {
	cfg := config.TestConfig()

	base := collectionOptions(cfg, paging.NopLogger{})
	cfg.Source.Mode = "cursor"
	cursor := collectionOptions(cfg, paging.NopLogger{})
	assert.Len(t, cursor, len(base)+1, "cursor mode narrows locally")

	cfg.Source.Mode = "offset"
	cfg.Paging.PostFilter = true
	assert.Len(t, collectionOptions(cfg, paging.NopLogger{}), len(base)+1)
}

func TestPathValidatorFollowsExplicitPaths(t *testing.T) {
	isolate(t)
	assert.NotEmpty(t, pathValidator().AllowedBaseDirs)

	dbPath = "/srv/contacts.db"
	assert.Empty(t, pathValidator().AllowedBaseDirs)
}

func TestReadContacts(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"list.json": `[{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com"}]`,
		"doc.json":  `{"contacts":[{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com"}]}`,
		"doc.toml": `[[contacts]]
first_name = "Ada"
last_name = "Lovelace"
email = "ada@example.com"
`,
		"doc.yaml": `contacts:
  - first_name: Ada
    last_name: Lovelace
    email: ada@example.com
`,
	}

	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			contacts, err := readContacts(path, "")
			require.NoError(t, err)
			require.Len(t, contacts, 1)
			assert.Equal(t, "Ada", contacts[0].FirstName)
			assert.Equal(t, "Lovelace", contacts[0].LastName)
			assert.Equal(t, "ada@example.com", contacts[0].Email)
		})
	}

	t.Run("unknown extension", func(t *testing.T) {
		_, err := readContacts(filepath.Join(dir, "contacts.csv"), "")
		assert.Error(t, err)
	})
}

func TestWriteThenReadContacts(t *testing.T) {
	contacts := generateContacts(3, 7)
	for _, c := range contacts {
		c.ID = c.Email
		c.Name = c.DisplayName()
	}

	for _, format := range []string{"json", "toml", "yaml"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "contacts."+format)
			f, err := os.Create(path)
			require.NoError(t, err)
			require.NoError(t, writeContacts(f, format, contacts))
			require.NoError(t, f.Close())

			got, err := readContacts(path, "")
			require.NoError(t, err)
			require.Len(t, got, len(contacts))
			for i := range contacts {
				assert.Equal(t, contacts[i].ID, got[i].ID)
				assert.Equal(t, contacts[i].Name, got[i].Name)
				assert.Equal(t, contacts[i].Phone, got[i].Phone)
			}
		})
	}
}

func TestGenerateContacts(t *testing.T) {
	a := generateContacts(20, 42)
	b := generateContacts(20, 42)
	require.Len(t, a, 20)
	assert.Equal(t, a, b, "same seed, same contacts")

	emails := make(map[string]bool)
	for _, c := range a {
		assert.NotEmpty(t, c.FirstName)
		assert.NotEmpty(t, c.Account)
		assert.Contains(t, c.Email, "@")
		emails[c.Email] = true
	}
	assert.Len(t, emails, 20, "emails are unique")
}

func TestSeedAndExport(t *testing.T) {
	home := isolate(t)

	seedCount, seedSeed, seedFormat = 25, 1, ""
	var out bytes.Buffer
	seedCmd.SetOut(&out)
	require.NoError(t, runSeed(seedCmd, nil))
	assert.Contains(t, out.String(), "Imported 25 contacts")

	exportFormat, exportOutput = "json", ""
	t.Cleanup(func() { exportFormat, exportOutput = "", "" })
	out.Reset()
	exportCmd.SetOut(&out)
	require.NoError(t, runExport(exportCmd, nil))

	path := filepath.Join(home, ".lazyload", "export.json")
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o644))
	exported, err := readContacts(path, "")
	require.NoError(t, err)
	assert.Len(t, exported, 25)

	exportFormat, exportOutput = "", filepath.Join(t.TempDir(), "contacts.yaml")
	require.NoError(t, runExport(exportCmd, nil))
	exported, err = readContacts(exportOutput, "")
	require.NoError(t, err)
	assert.Len(t, exported, 25)

	repo, err := storage.NewStore(filepath.Join(home, ".lazyload", "contacts.db"))
	require.NoError(t, err)
	defer repo.Close()
	n, err := repo.CountContacts("")
	require.NoError(t, err)
	assert.Equal(t, 25, n)
}

func TestSeedRejectsBadCount(t *testing.T) {
	isolate(t)
	seedCount = 0
	t.Cleanup(func() { seedCount = 500 })
	assert.Error(t, runSeed(seedCmd, nil))
}
