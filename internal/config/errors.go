package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoCategory is returned when no root category is given.
	ErrNoCategory = errors.New("no category specified")

	// ErrNoOutput is returned when an output path is missing.
	ErrNoOutput = errors.New("titles, corpus and statistics paths are required")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidPacingInterval is returned when the pacing interval is negative.
	// Use 0 to disable pacing.
	ErrInvalidPacingInterval = errors.New("invalid pacing interval: must be non-negative")

	// ErrInvalidMaxInFlight is returned when the in-flight cap is negative.
	ErrInvalidMaxInFlight = errors.New("invalid max in-flight requests: must be non-negative")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetryInterval is returned when a retry interval is negative.
	ErrInvalidRetryInterval = errors.New("invalid retry interval: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidLanguage is returned when the language is not a BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid language code")

	// ErrInvalidProxyAddress is returned when the proxy is not "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port")

	// ErrNoStoreDir is returned when no store directory is configured.
	ErrNoStoreDir = errors.New("no store directory specified")
)
