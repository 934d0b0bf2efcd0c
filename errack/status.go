package errack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const lastRunTTL = 7 * 24 * time.Hour

// Outcomes stored in RunStatus.Outcome.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

var ErrNoRunStatus = errors.New("no run status recorded for this job")

// RunStatus is the last recorded outcome of a job.
type RunStatus struct {
	Job          string     `json:"job"`
	Outcome      string     `json:"outcome"`
	At           time.Time  `json:"at"`
	Acknowledged int        `json:"acknowledged"`
	NextRun      *time.Time `json:"nextrun,omitempty"`
	ErrorKind    string     `json:"errorkind,omitempty"`
	Error        string     `json:"error,omitempty"`
	Instance     string     `json:"instance"`
}

// StatusStore keeps the last run status of every job in Redis so that any node, or
// an operator, can see how reconciliation is going. A nil Redis client turns every
// write into a no-op.
type StatusStore struct {
	client     *redis.Client
	instanceID string
}

func NewStatusStore(client *redis.Client) *StatusStore {
	return &StatusStore{client: client, instanceID: newInstanceID()}
}

// newInstanceID returns hostname-PID-shortuuid.
func newInstanceID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%d-%s", hostname, os.Getpid(), uuid.NewString()[:8])
}

// InstanceID identifies this process in recorded statuses.
func (s *StatusStore) InstanceID() string {
	return s.instanceID
}

// RecordSuccess stores the outcome of a successful run.
func (s *StatusStore) RecordSuccess(ctx context.Context, job string, res Result) error {
	fields := map[string]interface{}{
		"outcome":      OutcomeSuccess,
		"at":           res.StartedAt.UTC().Format(time.RFC3339Nano),
		"acknowledged": len(res.Acknowledged),
		"nextrun":      "",
		"errorkind":    "",
		"error":        "",
		"instance":     s.instanceID,
	}
	if next, ok := res.NextRun(); ok {
		fields["nextrun"] = next.UTC().Format(time.RFC3339Nano)
	}
	return s.write(ctx, job, fields)
}

// RecordFailure stores the outcome of a failed run.
func (s *StatusStore) RecordFailure(ctx context.Context, job string, runErr error, at time.Time) error {
	return s.write(ctx, job, map[string]interface{}{
		"outcome":      OutcomeFailed,
		"at":           at.UTC().Format(time.RFC3339Nano),
		"acknowledged": 0,
		"nextrun":      "",
		"errorkind":    Kind(runErr),
		"error":        runErr.Error(),
		"instance":     s.instanceID,
	})
}

func (s *StatusStore) write(ctx context.Context, job string, fields map[string]interface{}) error {
	if s.client == nil {
		return nil
	}
	key := LastRunKey(job)
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("failed to record run status for %s: %w", job, err)
	}
	if err := s.client.Expire(ctx, key, lastRunTTL).Err(); err != nil {
		return fmt.Errorf("failed to set run status ttl for %s: %w", job, err)
	}
	return nil
}

// LastRun returns the last recorded status of job, or ErrNoRunStatus.
func (s *StatusStore) LastRun(ctx context.Context, job string) (RunStatus, error) {
	if s.client == nil {
		return RunStatus{}, ErrNoRunStatus
	}
	fields, err := s.client.HGetAll(ctx, LastRunKey(job)).Result()
	if err != nil {
		return RunStatus{}, fmt.Errorf("failed to read run status for %s: %w", job, err)
	}
	if len(fields) == 0 {
		return RunStatus{}, ErrNoRunStatus
	}

	status := RunStatus{
		Job:       job,
		Outcome:   fields["outcome"],
		ErrorKind: fields["errorkind"],
		Error:     fields["error"],
		Instance:  fields["instance"],
	}
	if status.At, err = time.Parse(time.RFC3339Nano, fields["at"]); err != nil {
		return RunStatus{}, fmt.Errorf("invalid run status time for %s: %w", job, err)
	}
	if status.Acknowledged, err = strconv.Atoi(fields["acknowledged"]); err != nil {
		return RunStatus{}, fmt.Errorf("invalid acknowledged count for %s: %w", job, err)
	}
	if next := fields["nextrun"]; next != "" {
		t, err := time.Parse(time.RFC3339Nano, next)
		if err != nil {
			return RunStatus{}, fmt.Errorf("invalid next run time for %s: %w", job, err)
		}
		status.NextRun = &t
	}
	return status, nil
}
