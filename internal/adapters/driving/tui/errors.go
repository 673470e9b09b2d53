package tui

import "errors"

// ErrMissingJobService is returned when the job service is not provided.
var ErrMissingJobService = errors.New("tui: job service is required")

// ErrMissingResourceService is returned when the resource service is not provided.
var ErrMissingResourceService = errors.New("tui: resource service is required")

// ErrNoJobs is returned when there is nothing to watch.
var ErrNoJobs = errors.New("tui: at least one job id is required")
