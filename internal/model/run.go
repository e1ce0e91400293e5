package model

import "time"

// Run carries the state of one crawl invocation through the pipeline steps.
type Run struct {
	// ID is the run identifier used as the in-progress category marker.
	ID RunID `json:"run_id"`

	// Category is the root category title.
	Category string `json:"category"`

	// TitlesFile, CorpusFile and StatsFile are the output artifact paths.
	TitlesFile string `json:"titles_file"`
	CorpusFile string `json:"corpus_file"`
	StatsFile  string `json:"stats_file"`

	// StartedAt is when the run was created.
	StartedAt time.Time `json:"started_at"`

	// CategoriesCompleted is the number of categories completed by the traversal.
	CategoriesCompleted int64 `json:"categories_completed"`

	// Titles is the sorted, deduplicated title list produced by the export step.
	Titles []string `json:"-"`

	// Skipped counts titles without extractable text.
	Skipped int64 `json:"skipped"`

	// Stats is filled in by the corpus step.
	Stats Stats `json:"stats"`

	// StepTimings records how long each completed step took, in execution order.
	StepTimings []StepTiming `json:"step_timings,omitempty"`

	// Error is the error that stopped the run, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error.
	ErrorMessage string `json:"error,omitempty"`
}

// StepTiming is the wall-clock duration of one pipeline step.
type StepTiming struct {
	Step     string        `json:"step"`
	Duration time.Duration `json:"duration"`
}

// NewRun creates a Run for the given root category.
func NewRun(id RunID, category string, startedAt time.Time) *Run {
	return &Run{
		ID:        id,
		Category:  category,
		StartedAt: startedAt,
	}
}
