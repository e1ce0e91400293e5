package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/nao1215/wikicorpus/internal/config"
	"github.com/nao1215/wikicorpus/internal/corpus"
	"github.com/nao1215/wikicorpus/internal/crawler"
	"github.com/nao1215/wikicorpus/internal/model"
)

// fakeWiki serves a category graph and page extracts from memory.
type fakeWiki struct {
	mu       sync.Mutex
	graph    map[string][]model.Member
	texts    map[string]string
	rename   map[string]string
	extracts int
}

func (f *fakeWiki) CategoryMembers(_ context.Context, category string) ([]model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.graph[category], nil
}

func (f *fakeWiki) Extract(_ context.Context, title string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.extracts++
	page := map[string]any{"ns": 0, "title": title}
	if renamed, ok := f.rename[title]; ok {
		page["title"] = renamed
	}
	if text, ok := f.texts[title]; ok {
		page["extract"] = text
	} else {
		page["missing"] = ""
	}
	return json.Marshal(map[string]any{"query": map[string]any{"pages": map[string]any{"1": page}}})
}

func newFakeWiki() *fakeWiki {
	return &fakeWiki{
		graph: map[string][]model.Member{
			"Category:Root": {
				{Title: "Alpha", Kind: model.KindArticle},
				{Title: "Category:Sub", Kind: model.KindCategory},
			},
			"Category:Sub": {
				{Title: "Beta", Kind: model.KindArticle},
				{Title: "Gamma", Kind: model.KindArticle},
				{Title: "Category:Root", Kind: model.KindCategory},
			},
		},
		texts: map[string]string{
			"Alpha": "alpha text",
			"Beta":  "бета",
		},
		rename: map[string]string{},
	}
}

// testConfig returns a config writing into a fresh temporary directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Category = "Category:Root"
	cfg.TitlesFile = filepath.Join(dir, "titles.json")
	cfg.CorpusFile = filepath.Join(dir, "texts.json")
	cfg.StatsFile = filepath.Join(dir, "stat.json")
	cfg.StoreDir = filepath.Join(dir, "store")
	cfg.PacingInterval = 0
	cfg.BatchSize = 2
	return cfg
}

func runFor(t *testing.T, cfg *config.Config) *model.Run {
	t.Helper()

	run := newTestRun(t)
	run.Category = cfg.Category
	run.TitlesFile = cfg.TitlesFile
	run.CorpusFile = cfg.CorpusFile
	run.StatsFile = cfg.StatsFile
	return run
}

// TestDefaultPipeline runs the whole crawl against an in-memory wiki.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("produces titles, corpus and statistics", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		src := newFakeWiki()
		p := DefaultPipeline(src, cfg, WithLogger(discardLogger()))

		if got := p.StepNames(); !slices.Equal(got, []string{"traverse", "export", "corpus", "stats"}) {
			t.Fatalf("unexpected steps %v", got)
		}

		run := runFor(t, cfg)
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if run.CategoriesCompleted != 2 {
			t.Errorf("expected 2 completed categories, got %d", run.CategoriesCompleted)
		}

		titles, err := corpus.ReadTitles(cfg.TitlesFile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(titles, []string{"Alpha", "Beta", "Gamma"}) {
			t.Errorf("unexpected titles %v", titles)
		}

		data, err := os.ReadFile(cfg.CorpusFile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"Alpha":"alpha text","Beta":"бета"}` {
			t.Errorf("unexpected corpus %s", data)
		}
		if run.Skipped != 1 {
			t.Errorf("expected Gamma to be skipped, got %d skipped", run.Skipped)
		}

		want := model.Stats{Count: 2, TitleSize: 9, TextSize: 18}
		if run.Stats != want {
			t.Errorf("expected stats %+v, got %+v", want, run.Stats)
		}
		if _, err := corpus.Verify(cfg.CorpusFile, cfg.StatsFile); err != nil {
			t.Errorf("expected written corpus to verify, got %v", err)
		}
	})

	t.Run("from titles skips the traversal", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.FromTitles = true
		if err := corpus.WriteTitles(cfg.TitlesFile, []string{"Beta"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		src := newFakeWiki()
		p := DefaultPipeline(src, cfg, WithLogger(discardLogger()))
		if got := p.StepNames(); !slices.Equal(got, []string{"load_titles", "corpus", "stats"}) {
			t.Fatalf("unexpected steps %v", got)
		}

		run := runFor(t, cfg)
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.Stats.Count != 1 || src.extracts != 1 {
			t.Errorf("expected a single fetched title, got stats %+v and %d requests", run.Stats, src.extracts)
		}
		if _, err := os.Stat(cfg.StoreDir); !os.IsNotExist(err) {
			t.Errorf("expected no store directory, got %v", err)
		}
	})

	t.Run("title mismatch stops before the stats step", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		src := newFakeWiki()
		src.rename["Beta"] = "Alpha"

		p := DefaultPipeline(src, cfg, WithLogger(discardLogger()))
		run := runFor(t, cfg)
		err := p.Execute(context.Background(), run)

		if !errors.Is(err, crawler.ErrTitleMismatch) {
			t.Fatalf("expected ErrTitleMismatch, got %v", err)
		}
		if _, err := os.Stat(cfg.StatsFile); !os.IsNotExist(err) {
			t.Errorf("expected no statistics file, got %v", err)
		}
		if run.ErrorMessage == "" {
			t.Error("expected error message in run")
		}
	})

	t.Run("second run over the same stores keeps the titles", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		src := newFakeWiki()

		for range 2 {
			p := DefaultPipeline(src, cfg, WithLogger(discardLogger()))
			if err := p.Execute(context.Background(), runFor(t, cfg)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		titles, err := corpus.ReadTitles(cfg.TitlesFile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(titles, []string{"Alpha", "Beta", "Gamma"}) {
			t.Errorf("unexpected titles %v", titles)
		}
	})
}

// TestExportStepMissingStore tests exporting before any traversal.
func TestExportStepMissingStore(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	err := NewExportStep(cfg.StoreDir, discardLogger()).Do(context.Background(), runFor(t, cfg))
	if err == nil {
		t.Error("expected error for missing title store")
	}
}
