package errack_test

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/remiges-tech/errack/errack"
	"github.com/remiges-tech/errack/errack/pg/errsqlc"
)

// memDB is an in-memory error store with transactional acknowledgment. Updates are
// staged per transaction and only become visible on Commit.
type memDB struct {
	mu        sync.Mutex
	errors    map[int64]errsqlc.Executionerrorinfo
	requests  map[int64]string
	processes map[int64]int32
	tasks     map[int64]string
	nextID    int64

	beginErr  error
	findErr   error
	ackErr    error
	ackAfter  int // with ackErr: number of rows staged before the failure
	commitErr error

	commits   int
	rollbacks int
}

func newMemDB() *memDB {
	return &memDB{
		errors:    make(map[int64]errsqlc.Executionerrorinfo),
		requests:  make(map[int64]string),
		processes: make(map[int64]int32),
		tasks:     make(map[int64]string),
	}
}

func (db *memDB) addRequest(id int64, status errack.JobStatus) {
	db.requests[id] = string(status)
}

func (db *memDB) addProcess(id int64, state errack.ProcessState) {
	db.processes[id] = int32(state)
}

func (db *memDB) addTask(id int64, status errack.TaskStatus) {
	db.tasks[id] = string(status)
}

func (db *memDB) addError(errorType string, referenceID int64) int64 {
	db.nextID++
	db.errors[db.nextID] = errsqlc.Executionerrorinfo{
		ID:          db.nextID,
		Errorid:     uuid.New(),
		Type:        errorType,
		Referenceid: referenceID,
		Errormsg:    "boom",
	}
	return db.nextID
}

func (db *memDB) acknowledged() []int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	ids := []int64{}
	for id, e := range db.errors {
		if e.Acknowledged {
			ids = append(ids, id)
		}
	}
	return ids
}

func (db *memDB) snapshot() (map[int64]errsqlc.Executionerrorinfo, map[int64]string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	errs := make(map[int64]errsqlc.Executionerrorinfo, len(db.errors))
	for k, v := range db.errors {
		errs[k] = v
	}
	reqs := make(map[int64]string, len(db.requests))
	for k, v := range db.requests {
		reqs[k] = v
	}
	return errs, reqs
}

func (db *memDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return &memTx{db: db, staged: make(map[int64]errsqlc.Executionerrorinfo)}, nil
}

func memQuerier(d errsqlc.DBTX) errsqlc.Querier {
	return &memQueries{tx: d.(*memTx)}
}

// memTx embeds pgx.Tx for the methods the command never calls.
type memTx struct {
	pgx.Tx
	db     *memDB
	staged map[int64]errsqlc.Executionerrorinfo
	done   bool
}

func (tx *memTx) Commit(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	if tx.db.commitErr != nil {
		tx.db.rollbacks++
		return tx.db.commitErr
	}
	for id, row := range tx.staged {
		tx.db.errors[id] = row
	}
	tx.db.commits++
	return nil
}

func (tx *memTx) Rollback(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	tx.db.rollbacks++
	return nil
}

type memQueries struct {
	tx *memTx
}

func (q *memQueries) find(errorType string, match func(ref int64) bool) ([]errsqlc.Executionerrorinfo, error) {
	db := q.tx.db
	if db.findErr != nil {
		return nil, db.findErr
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	var rows []errsqlc.Executionerrorinfo
	for _, e := range db.errors {
		if e.Type == errorType && !e.Acknowledged && match(e.Referenceid) {
			rows = append(rows, e)
		}
	}
	return rows, nil
}

func (q *memQueries) FindJobErrorsToAck(ctx context.Context, arg errsqlc.FindJobErrorsToAckParams) ([]errsqlc.Executionerrorinfo, error) {
	return q.find(arg.Type, func(ref int64) bool {
		status, ok := q.tx.db.requests[ref]
		return ok && containsString(arg.Statuses, status)
	})
}

func (q *memQueries) FindProcessErrorsToAck(ctx context.Context, arg errsqlc.FindProcessErrorsToAckParams) ([]errsqlc.Executionerrorinfo, error) {
	return q.find(arg.Type, func(ref int64) bool {
		state, ok := q.tx.db.processes[ref]
		if !ok {
			return false
		}
		for _, s := range arg.States {
			if s == state {
				return true
			}
		}
		return false
	})
}

func (q *memQueries) FindTaskErrorsToAck(ctx context.Context, arg errsqlc.FindTaskErrorsToAckParams) ([]errsqlc.Executionerrorinfo, error) {
	return q.find(arg.Type, func(ref int64) bool {
		status, ok := q.tx.db.tasks[ref]
		return ok && containsString(arg.Statuses, status)
	})
}

func (q *memQueries) AcknowledgeErrors(ctx context.Context, arg errsqlc.AcknowledgeErrorsParams) ([]int64, error) {
	db := q.tx.db
	db.mu.Lock()
	defer db.mu.Unlock()
	var ids []int64
	for i, id := range arg.Ids {
		if db.ackErr != nil && i >= db.ackAfter {
			return nil, db.ackErr
		}
		row, ok := db.errors[id]
		if !ok || row.Acknowledged {
			continue
		}
		row.Acknowledged = true
		row.Acknowledgedat = arg.Acknowledgedat
		row.Acknowledgedby = arg.Acknowledgedby
		q.tx.staged[id] = row
		ids = append(ids, id)
	}
	return ids, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// recordingSink collects audit reports.
type recordingSink struct {
	mu       sync.Mutex
	lines    []string
	acked    []int64
	failures []string
}

func (s *recordingSink) Acknowledged(rec errack.ExecutionErrorInfo, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acked = append(s.acked, rec.ID)
	s.lines = append(s.lines, reason)
}

func (s *recordingSink) RunFailed(errorType, kind string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, kind)
}

var errBoom = errors.New("boom")
