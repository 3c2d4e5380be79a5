package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	JobPayslipRender = "payslip_render"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunRecorder persists one row per job execution.
type RunRecorder interface {
	Begin(ctx context.Context, jobType string) (string, error)
	Finish(ctx context.Context, runID, status string, details []byte) error
}

type Service struct {
	Runs     RunRecorder
	queue    chan job
	draining chan struct{}
	drainMu  sync.Once
	wg       sync.WaitGroup
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(runs RunRecorder, size int) *Service {
	if size <= 0 {
		size = 128
	}
	return &Service{Runs: runs, queue: make(chan job, size), draining: make(chan struct{})}
}

// Start runs the worker until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()
}

// Wait blocks until the worker has exited.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Drain tells the worker to run every job already queued and then exit. It
// returns ctx.Err() if the queue is not empty by the time ctx is done; the
// caller then cancels the worker context to abandon the rest.
func (s *Service) Drain(ctx context.Context) error {
	s.drainMu.Do(func() { close(s.draining) })
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue drops the job with a warning when the queue is full.
func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.draining:
			s.drain(ctx)
			return
		case j := <-s.queue:
			s.runQueued(ctx, j)
		}
	}
}

func (s *Service) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			s.runQueued(ctx, j)
		default:
			return
		}
	}
}

func (s *Service) runQueued(ctx context.Context, j job) {
	if _, err := s.runJob(ctx, j); err != nil {
		slog.Warn("job run failed", "jobType", j.Type, "err", err)
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.Runs != nil {
		id, err := s.Runs.Begin(ctx, j.Type)
		if err != nil {
			slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
		}
		runID = id
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		details = map[string]any{"error": err.Error(), "details": details}
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if updErr := s.Runs.Finish(ctx, runID, status, detailsJSON); updErr != nil {
			slog.Warn("job run update failed", "runId", runID, "err", updErr)
		}
	}
	return details, err
}

// PGRuns records job executions in the job_runs table.
type PGRuns struct {
	DB *pgxpool.Pool
}

func (p PGRuns) Begin(ctx context.Context, jobType string) (string, error) {
	var id string
	err := p.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, jobType, StatusRunning).Scan(&id)
	return id, err
}

func (p PGRuns) Finish(ctx context.Context, runID, status string, details []byte) error {
	_, err := p.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, runID)
	return err
}
