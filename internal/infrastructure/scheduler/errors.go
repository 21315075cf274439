package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrJobAlreadyRunning is returned when a job is triggered while its previous run is still going
	ErrJobAlreadyRunning = errors.New("job is already running")

	// ErrJobNotFound is returned when a job is not registered
	ErrJobNotFound = errors.New("job not found")
)
