package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/wikicorpus/internal/config"
	"github.com/nao1215/wikicorpus/internal/corpus"
	"github.com/nao1215/wikicorpus/internal/crawler"
	"github.com/nao1215/wikicorpus/internal/model"
	"github.com/nao1215/wikicorpus/internal/retry"
	"github.com/nao1215/wikicorpus/internal/store"
)

// TraverseStep walks the category graph of run.Category into the stores
// kept in a directory.
type TraverseStep struct {
	lister   crawler.MemberLister
	storeDir string
	policy   retry.Policy
	logger   *slog.Logger
}

// NewTraverseStep creates a TraverseStep.
func NewTraverseStep(lister crawler.MemberLister, storeDir string, policy retry.Policy, logger *slog.Logger) *TraverseStep {
	return &TraverseStep{
		lister:   lister,
		storeDir: storeDir,
		policy:   policy,
		logger:   orDefault(logger),
	}
}

// Name returns the step name.
func (s *TraverseStep) Name() string {
	return "traverse"
}

// Do executes the traversal.
func (s *TraverseStep) Do(ctx context.Context, run *model.Run) (err error) {
	stores, err := store.OpenStores(s.storeDir, store.DefaultOptions())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, stores.Close())
	}()

	t := crawler.NewTraverser(s.lister, stores.Titles, stores.Categories, run.ID,
		crawler.WithTraverserRetry(s.policy),
		crawler.WithTraverserLogger(s.logger),
	)
	err = t.Traverse(ctx, run.Category)
	run.CategoriesCompleted = t.Completed()
	return err
}

// ExportStep reopens the title store read-only, collects the sorted title
// list into run.Titles and writes it to run.TitlesFile.
type ExportStep struct {
	storeDir string
	logger   *slog.Logger
}

// NewExportStep creates an ExportStep.
func NewExportStep(storeDir string, logger *slog.Logger) *ExportStep {
	return &ExportStep{storeDir: storeDir, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do executes the export.
func (s *ExportStep) Do(ctx context.Context, run *model.Run) (err error) {
	titles, err := store.OpenTitles(s.storeDir, store.ReadOnlyOptions())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, titles.Close())
	}()

	run.Titles, err = crawler.Export(ctx, titles)
	if err != nil {
		return err
	}
	s.logger.Info("titles exported", "count", len(run.Titles), "file", run.TitlesFile)
	return corpus.WriteTitles(run.TitlesFile, run.Titles)
}

// LoadTitlesStep reads run.Titles back from an existing titles file, in
// place of TraverseStep and ExportStep.
type LoadTitlesStep struct{}

// Name returns the step name.
func (LoadTitlesStep) Name() string {
	return "load_titles"
}

// Do reads the titles file.
func (LoadTitlesStep) Do(_ context.Context, run *model.Run) error {
	titles, err := corpus.ReadTitles(run.TitlesFile)
	if err != nil {
		return err
	}
	run.Titles = titles
	return nil
}

// CorpusStep fetches the text of every title in run.Titles and streams the
// pairs to run.CorpusFile.
type CorpusStep struct {
	source crawler.TextSource
	opts   []crawler.FetcherOption
}

// NewCorpusStep creates a CorpusStep.
func NewCorpusStep(source crawler.TextSource, opts ...crawler.FetcherOption) *CorpusStep {
	return &CorpusStep{source: source, opts: opts}
}

// Name returns the step name.
func (s *CorpusStep) Name() string {
	return "corpus"
}

// Do executes the fetch and write.
func (s *CorpusStep) Do(ctx context.Context, run *model.Run) error {
	f := crawler.NewFetcher(s.source, s.opts...)
	stats, err := corpus.Write(f.FetchAll(ctx, run.Titles), run.CorpusFile)
	run.Stats = stats
	run.Skipped = f.Skipped()
	if err != nil {
		if crawler.IsFatal(err) {
			return fmt.Errorf("corpus aborted: %w", err)
		}
		return err
	}
	return nil
}

// StatsStep persists run.Stats to run.StatsFile.
type StatsStep struct{}

// Name returns the step name.
func (StatsStep) Name() string {
	return "stats"
}

// Do writes the statistics record.
func (StatsStep) Do(_ context.Context, run *model.Run) error {
	return corpus.WriteStats(run.StatsFile, run.Stats)
}

// Source is the API surface the default pipeline crawls.
type Source interface {
	crawler.MemberLister
	crawler.TextSource
}

// DefaultPipeline creates the crawl pipeline for cfg: traverse, export,
// corpus and stats. With cfg.FromTitles the first two steps are replaced by
// reading the existing titles file.
func DefaultPipeline(source Source, cfg *config.Config, opts ...Option) *Pipeline {
	p := New(opts...)
	policy := cfg.RetryPolicy()

	if cfg.FromTitles {
		p.AddStep(LoadTitlesStep{})
	} else {
		p.AddSteps(
			NewTraverseStep(source, cfg.StoreDir, policy, p.logger),
			NewExportStep(cfg.StoreDir, p.logger),
		)
	}

	p.AddSteps(
		NewCorpusStep(source,
			crawler.WithBatchSize(cfg.BatchSize),
			crawler.WithPacingInterval(cfg.PacingInterval),
			crawler.WithMaxInFlight(cfg.MaxInFlight),
			crawler.WithRequestRetry(policy),
			crawler.WithBatchRetry(policy),
			crawler.WithFetcherLogger(p.logger),
		),
		StatsStep{},
	)

	return p
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
