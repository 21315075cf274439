package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is a unit of scheduled work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobState is the last known outcome of a job
type JobState struct {
	Name        string
	Spec        string
	Status      JobStatus
	Error       string
	LastRunAt   *time.Time
	CompletedAt *time.Time
	NextRunAt   *time.Time
	Runs        int
	Failures    int
}

// Config holds scheduler configuration
type Config struct {
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		JobTimeout:    30 * time.Minute,
		RetryAttempts: 2,
		RetryDelay:    time.Minute,
	}
}

type entry struct {
	job     Job
	spec    string
	id      cron.EntryID
	running bool
	state   JobState
}

// Scheduler runs jobs on cron expressions. A job never overlaps itself.
type Scheduler struct {
	config Config
	cron   *cron.Cron
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// New creates a scheduler evaluating expressions in UTC
func New(config Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultConfig().JobTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config:  config,
		cron:    cron.New(cron.WithLocation(time.UTC)),
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*entry),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register adds a job under a standard five-field cron expression
func (s *Scheduler) Register(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[job.Name()]; exists {
		return fmt.Errorf("%w: duplicate job %q", ErrInvalidConfig, job.Name())
	}
	e := &entry{job: job, spec: spec, state: JobState{Name: job.Name(), Spec: spec, Status: JobStatusPending}}
	id, err := s.cron.AddFunc(spec, func() {
		if err := s.run(s.ctx, e); err != nil && !errors.Is(err, ErrJobAlreadyRunning) {
			s.logger.Error("Scheduled job failed", zap.String("job", e.job.Name()), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("%w: job %q spec %q: %v", ErrInvalidConfig, job.Name(), spec, err)
	}
	e.id = id
	s.entries[job.Name()] = e
	return nil
}

// Start begins evaluating the registered schedules
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	for name, e := range s.entries {
		next := s.cron.Entry(e.id).Next
		s.logger.Info("Scheduled job registered",
			zap.String("job", name),
			zap.String("spec", e.spec),
			zap.Time("next_run_at", next),
		)
	}
}

// Stop stops the schedule and waits for running jobs until ctx expires,
// after which the running jobs are cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	if started {
		<-s.cron.Stop().Done()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}

// Trigger runs a job immediately, outside its schedule
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.run(ctx, e)
}

// States returns a snapshot of every job's last outcome, ordered by job name
func (s *Scheduler) States() []JobState {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make([]JobState, 0, len(s.entries))
	for _, e := range s.entries {
		st := e.state
		if s.started {
			next := s.cron.Entry(e.id).Next
			if !next.IsZero() {
				st.NextRunAt = &next
			}
		}
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return states
}

func (s *Scheduler) run(ctx context.Context, e *entry) error {
	s.mu.Lock()
	if e.running {
		s.mu.Unlock()
		s.logger.Warn("Skipping job, previous run still in progress", zap.String("job", e.job.Name()))
		return ErrJobAlreadyRunning
	}
	e.running = true
	started := s.now()
	e.state.Status = JobStatusRunning
	e.state.LastRunAt = &started
	e.state.Error = ""
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	err := s.attempt(ctx, e.job)

	s.mu.Lock()
	defer s.mu.Unlock()
	e.running = false
	completed := s.now()
	e.state.CompletedAt = &completed
	e.state.Runs++
	if err != nil {
		e.state.Status = JobStatusFailed
		e.state.Error = err.Error()
		e.state.Failures++
		return err
	}
	e.state.Status = JobStatusSuccess
	s.logger.Info("Scheduled job completed",
		zap.String("job", e.job.Name()),
		zap.Duration("duration", completed.Sub(started)),
	)
	return nil
}

func (s *Scheduler) attempt(ctx context.Context, job Job) error {
	var err error
	for i := 0; i <= s.config.RetryAttempts; i++ {
		if i > 0 {
			s.logger.Warn("Retrying scheduled job",
				zap.String("job", job.Name()),
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.config.RetryDelay):
			}
		}
		err = s.runOnce(ctx, job)
		if err == nil || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) (err error) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name(), r)
		}
	}()
	return job.Run(jobCtx)
}
