package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/wikicorpus/internal/config"
	"github.com/nao1215/wikicorpus/internal/corpus"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(cmd.Use, "wikicorpus ") {
			t.Errorf("expected use to start with 'wikicorpus', got %q", cmd.Use)
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
	})

	t.Run("flag defaults follow config defaults", func(t *testing.T) {
		t.Parallel()
		tests := map[string]string{
			"language": config.DefaultLanguage,
			"batch":    "1024",
			"pacing":   "15s",
			"timeout":  "1m0s",
		}
		for name, want := range tests {
			flag := cmd.Flags().Lookup(name)
			if flag == nil {
				t.Errorf("expected %s flag", name)
				continue
			}
			if flag.DefValue != want {
				t.Errorf("%s: expected default %q, got %q", name, want, flag.DefValue)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		found := map[string]bool{}
		for _, sub := range cmd.Commands() {
			found[sub.Name()] = true
		}
		for _, name := range []string{"init", "verify", "version"} {
			if !found[name] {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})
}

// TestBuildConfig tests the layering of defaults, file, flags and arguments.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	args := []string{"Категория:Root", "t.json", "c.json", "s.json"}

	t.Run("file values are overridden by changed flags only", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "wikicorpus.yaml")
		writeFile(t, configPath, "language: en\nbatchSize: 64\npacingInterval: 2s\nretry:\n  maxAttempts: 5\n")

		cmd := NewRootCmd()
		if err := cmd.ParseFlags([]string{"-c", configPath, "--batch", "8", "--store-dir", "/tmp/x"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, args)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Language != "en" {
			t.Errorf("expected language from file, got %q", cfg.Language)
		}
		if cfg.BatchSize != 8 {
			t.Errorf("expected batch size from flag, got %d", cfg.BatchSize)
		}
		if cfg.PacingInterval != 2*time.Second {
			t.Errorf("expected pacing from file, got %v", cfg.PacingInterval)
		}
		if cfg.RetryMaxAttempts != 5 {
			t.Errorf("expected retry attempts from file, got %d", cfg.RetryMaxAttempts)
		}
		if cfg.StoreDir != "/tmp/x" {
			t.Errorf("expected store dir from flag, got %q", cfg.StoreDir)
		}
		if cfg.Category != args[0] || cfg.TitlesFile != args[1] || cfg.CorpusFile != args[2] || cfg.StatsFile != args[3] {
			t.Errorf("positional arguments not applied: %+v", cfg)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		missing := filepath.Join(t.TempDir(), "absent.yaml")
		if err := cmd.ParseFlags([]string{"-c", missing}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		if _, err := buildConfig(cmd, args); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

// fakeMediaWiki serves a two-category graph with a cycle back to the root.
func fakeMediaWiki(t *testing.T) *httptest.Server {
	t.Helper()

	type member struct {
		NS    int    `json:"ns"`
		Title string `json:"title"`
	}
	categories := map[string][]member{
		"Category:Root": {{0, "Alpha"}, {14, "Category:Sub"}, {10, "Template:Box"}},
		"Category:Sub":  {{0, "Beta"}, {0, "Alpha"}, {14, "Category:Root"}, {0, "Gamma"}},
	}
	texts := map[string]string{
		"Alpha": "первый",
		"Beta":  "b <&> c",
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")

		var resp any
		switch {
		case q.Get("list") == "categorymembers":
			resp = map[string]any{
				"batchcomplete": true,
				"query":         map[string]any{"categorymembers": categories[q.Get("cmtitle")]},
			}
		case q.Get("prop") == "extracts":
			title := q.Get("titles")
			page := map[string]any{"ns": 0, "title": title}
			if text, ok := texts[title]; ok {
				page["pageid"] = len(title)
				page["extract"] = text
			}
			resp = map[string]any{"query": map[string]any{"pages": map[string]any{"1": page}}}
		default:
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}))
}

// TestRunCrawlCmd runs the whole command against a fake API.
func TestRunCrawlCmd(t *testing.T) {
	t.Parallel()

	srv := fakeMediaWiki(t)
	defer srv.Close()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "empty.yaml")
	writeFile(t, configPath, "")

	titlesPath := filepath.Join(dir, "out", "titles.json")
	corpusPath := filepath.Join(dir, "out", "corpus.json")
	statsPath := filepath.Join(dir, "out", "stat.json")
	reportPath := filepath.Join(dir, "reports", "run.md")
	if err := os.MkdirAll(filepath.Dir(titlesPath), 0750); err != nil {
		t.Fatalf("failed to create output dir: %v", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"-c", configPath,
		"--api-url", srv.URL,
		"--pacing", "0s",
		"--batch", "2",
		"--store-dir", filepath.Join(dir, "store"),
		"--report", reportPath,
		"Category:Root", titlesPath, corpusPath, statsPath,
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr.String())
	}

	titles, err := corpus.ReadTitles(titlesPath)
	if err != nil {
		t.Fatalf("failed to read titles: %v", err)
	}
	if strings.Join(titles, ",") != "Alpha,Beta,Gamma" {
		t.Errorf("unexpected titles: %v", titles)
	}

	data, err := os.ReadFile(corpusPath)
	if err != nil {
		t.Fatalf("failed to read corpus: %v", err)
	}
	if want := `{"Alpha":"первый","Beta":"b <&> c"}`; string(data) != want {
		t.Errorf("expected corpus %s, got %s", want, data)
	}

	if _, err := corpus.Verify(corpusPath, statsPath); err != nil {
		t.Errorf("corpus does not verify: %v", err)
	}

	if !strings.Contains(stdout.String(), "Categories completed: 2") {
		t.Errorf("expected summary on stdout, got:\n%s", stdout.String())
	}

	md, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !strings.Contains(string(md), "Category:Root") {
		t.Errorf("report does not name the category:\n%s", md)
	}
}

// TestRunCrawlCmdInvalidConfig tests that validation errors stop the crawl.
func TestRunCrawlCmdInvalidConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "empty.yaml")
	writeFile(t, configPath, "")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"-c", configPath,
		"--batch", "0",
		"Category:Root", "t.json", "c.json", "s.json",
	})

	if err := cmd.Execute(); !errors.Is(err, config.ErrInvalidBatchSize) {
		t.Errorf("expected ErrInvalidBatchSize, got %v", err)
	}
}

// TestRunCrawlCmdArgs tests the positional argument count.
func TestRunCrawlCmdArgs(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"Category:Root", "t.json"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected an argument count error")
	}
}
