package errack

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/remiges-tech/errack/errack/pg/errsqlc"
	"github.com/remiges-tech/errack/metrics"
	"github.com/remiges-tech/logharbour/logharbour"
)

// Metric names recorded by AutoAckCommand. RegisterMetrics must be called once per
// Metrics instance before any command records into it.
const (
	MetricRuns         = "errack_runs_total"
	MetricAcknowledged = "errack_acknowledged_total"
	MetricRunDuration  = "errack_run_duration_seconds"
)

// RegisterMetrics registers the metrics recorded by AutoAckCommand.
func RegisterMetrics(m metrics.Metrics) {
	m.RegisterWithLabels(MetricRuns, metrics.Counter, "Auto ack runs by error type and outcome", []string{"errortype", "outcome"})
	m.RegisterWithLabels(MetricAcknowledged, metrics.Counter, "Errors auto acknowledged by error type", []string{"errortype"})
	m.RegisterWithLabels(MetricRunDuration, metrics.Histogram, "Duration of auto ack runs", []string{"errortype"})
}

// QuerierFactory binds queries to the acknowledgment transaction.
type QuerierFactory func(db errsqlc.DBTX) errsqlc.Querier

// Result is what one invocation reports back to its scheduler.
type Result struct {
	ErrorType    string
	EmfName      string
	StartedAt    time.Time
	Acknowledged []int64
	// NextRunAt is zero when no further execution is wanted.
	NextRunAt time.Time
}

// NextRun returns the time of the next execution, or false for a single run.
func (r Result) NextRun() (time.Time, bool) {
	return r.NextRunAt, !r.NextRunAt.IsZero()
}

// AutoAckCommand is the recurring unit of work that acknowledges errors selected by
// one AckRule. Every invocation loads the eligible errors, flags them in a single
// transaction, reports each one and works out when it should run again.
type AutoAckCommand struct {
	rule    AckRule
	units   Units
	logger  *logharbour.Logger
	sink    AuditSink
	metrics metrics.Metrics
	now     func() time.Time
	queries QuerierFactory
}

type Option func(*AutoAckCommand)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *AutoAckCommand) { c.now = now }
}

// WithAuditSink replaces the default LogSink.
func WithAuditSink(sink AuditSink) Option {
	return func(c *AutoAckCommand) { c.sink = sink }
}

func WithMetrics(m metrics.Metrics) Option {
	return func(c *AutoAckCommand) { c.metrics = m }
}

// WithQuerierFactory replaces errsqlc.New as the way queries are bound to the transaction.
func WithQuerierFactory(f QuerierFactory) Option {
	return func(c *AutoAckCommand) { c.queries = f }
}

// NewAutoAckCommand creates a command for rule over the given persistence units.
func NewAutoAckCommand(rule AckRule, units Units, logger *logharbour.Logger, opts ...Option) *AutoAckCommand {
	if logger == nil {
		panic("logger cannot be nil")
	}
	c := &AutoAckCommand{
		rule:   rule,
		units:  units,
		logger: logger.WithModule("autoack"),
		now:    time.Now,
		queries: func(db errsqlc.DBTX) errsqlc.Querier {
			return errsqlc.New(db)
		},
	}
	c.sink = LogSink{Logger: c.logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rule returns the rule this command applies.
func (c *AutoAckCommand) Rule() AckRule {
	return c.rule
}

// Execute runs one auto-ack pass. On error nothing has been acknowledged; the error
// is a *ConfigurationError, *PersistenceFailure or *RuleEvaluationFailure and it is
// up to the caller whether and when to try again.
func (c *AutoAckCommand) Execute(ctx context.Context, params map[string]string) (Result, error) {
	start := c.now()
	res, err := c.execute(ctx, params, start)
	c.recordRun(start, res, err)
	if err != nil {
		c.sink.RunFailed(c.rule.ErrorType(), Kind(err), err)
		return res, err
	}

	c.logger.Info().LogActivity("Auto ack run completed", map[string]any{
		"errorType":    res.ErrorType,
		"emfName":      res.EmfName,
		"acknowledged": len(res.Acknowledged),
		"singleRun":    res.NextRunAt.IsZero(),
	})
	return res, nil
}

func (c *AutoAckCommand) execute(ctx context.Context, params map[string]string, now time.Time) (Result, error) {
	res := Result{ErrorType: c.rule.ErrorType(), StartedAt: now, Acknowledged: []int64{}}

	p, err := ResolveParams(params, c.units)
	if err != nil {
		return res, err
	}
	res.EmfName = p.EmfName

	tx, err := p.DB.Begin(ctx)
	if err != nil {
		return res, &PersistenceFailure{Op: OpBegin, Unit: p.EmfName, Err: err}
	}
	// Rollback after a successful commit is a no-op.
	defer tx.Rollback(ctx)

	q := c.queries(tx)

	candidates, err := c.rule.FindErrorsToAck(ctx, q)
	if err != nil {
		return res, &RuleEvaluationFailure{ErrorType: c.rule.ErrorType(), Err: err}
	}
	c.logger.Debug0().LogActivity("Found errors to acknowledge", map[string]any{
		"errorType": c.rule.ErrorType(),
		"count":     len(candidates),
	})

	var acked []int64
	if len(candidates) > 0 {
		ids := make([]int64, 0, len(candidates))
		for _, e := range candidates {
			ids = append(ids, e.ID)
		}
		// Rows acknowledged by another node in the meantime are skipped by the
		// update and do not come back in acked.
		acked, err = q.AcknowledgeErrors(ctx, errsqlc.AcknowledgeErrorsParams{
			Ids:            ids,
			Acknowledgedat: pgtype.Timestamptz{Time: now, Valid: true},
			Acknowledgedby: pgtype.Text{String: AutoAckUser, Valid: true},
		})
		if err != nil {
			return res, &PersistenceFailure{Op: OpAcknowledge, Unit: p.EmfName, Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return res, &PersistenceFailure{Op: OpCommit, Unit: p.EmfName, Err: err}
	}

	ackedSet := make(map[int64]bool, len(acked))
	for _, id := range acked {
		ackedSet[id] = true
	}
	for _, e := range candidates {
		if !ackedSet[e.ID] {
			continue
		}
		e.Acknowledged = true
		e.AcknowledgedAt = now
		e.AcknowledgedBy = AutoAckUser
		c.sink.Acknowledged(e, c.rule.AckReason())
		res.Acknowledged = append(res.Acknowledged, e.ID)
	}

	if !p.SingleRun {
		res.NextRunAt = now.Add(p.NextRun)
	}
	return res, nil
}

func (c *AutoAckCommand) recordRun(start time.Time, res Result, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = Kind(err)
	}
	c.metrics.RecordWithLabels(MetricRuns, 1, c.rule.ErrorType(), outcome)
	c.metrics.RecordWithLabels(MetricAcknowledged, float64(len(res.Acknowledged)), c.rule.ErrorType())
	c.metrics.RecordWithLabels(MetricRunDuration, c.now().Sub(start).Seconds(), c.rule.ErrorType())
}
