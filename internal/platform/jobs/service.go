package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"hrkey/internal/platform/metrics"
	"hrkey/internal/platform/querier"
)

const (
	JobEvaluationRecompute = "evaluation_recompute"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var ErrQueueFull = errors.New("job queue full")

type RunFunc func(context.Context) (any, error)

type Service struct {
	DB      querier.Querier
	Metrics *metrics.Collector
	queue   chan job
	done    chan struct{}
}

type job struct {
	Type string
	Run  RunFunc
}

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

func New(db querier.Querier, m *metrics.Collector) *Service {
	return &Service{
		DB:      db,
		Metrics: m,
		queue:   make(chan job, 128),
		done:    make(chan struct{}),
	}
}

// Start runs the worker until ctx is cancelled. Done is closed when it exits.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

func (s *Service) Done() <-chan struct{} {
	return s.done
}

func (s *Service) Enqueue(jobType string, run RunFunc) error {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return nil
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return ErrQueueFull
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
      INSERT INTO job_runs (job_type, status)
      VALUES ($1,$2)
      RETURNING id::text
    `, j.Type, StatusRunning).Scan(&runID); err != nil {
			slog.Warn("job run insert failed", "err", err)
		}
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		details = map[string]any{"error": err.Error(), "partial": details}
	}
	s.Metrics.JobRun(j.Type, status)

	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) List(ctx context.Context, jobType string, limit, offset int) ([]Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, job_type, status, details_json, started_at, completed_at
    FROM job_runs
    WHERE ($1 = '' OR job_type = $1)
    ORDER BY started_at DESC
    LIMIT $2 OFFSET $3
  `, jobType, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var details []byte
		if err := rows.Scan(&r.ID, &r.JobType, &r.Status, &details, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			r.Details = json.RawMessage(details)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
