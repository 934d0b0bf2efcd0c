package errack

import (
	"time"

	"github.com/google/uuid"
	"github.com/remiges-tech/errack/errack/pg/errsqlc"
)

// Error type discriminators written by the executor into executionerrorinfo.type.
const (
	ErrorTypeJob     = "JOB"
	ErrorTypeProcess = "PROCESS"
	ErrorTypeTask    = "TASK"
)

// AutoAckUser is recorded in acknowledgedby for every error this package acknowledges.
const AutoAckUser = "auto-ack"

// JobStatus is the status of a RequestInfo record. The set is owned by the executor
// and may grow; only the statuses named by the job rule are referenced here.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusDone      JobStatus = "DONE"
	JobStatusError     JobStatus = "ERROR"
	JobStatusCancelled JobStatus = "CANCELLED"
	JobStatusRetrying  JobStatus = "RETRYING"
)

// ProcessState mirrors processinstancelog.status.
type ProcessState int32

const (
	ProcessStatePending ProcessState = iota
	ProcessStateActive
	ProcessStateCompleted
	ProcessStateAborted
	ProcessStateSuspended
)

// TaskStatus mirrors task.status.
type TaskStatus string

const (
	TaskStatusCreated    TaskStatus = "Created"
	TaskStatusReady      TaskStatus = "Ready"
	TaskStatusReserved   TaskStatus = "Reserved"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusSuspended  TaskStatus = "Suspended"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusFailed     TaskStatus = "Failed"
	TaskStatusError      TaskStatus = "Error"
	TaskStatusExited     TaskStatus = "Exited"
	TaskStatusObsolete   TaskStatus = "Obsolete"
)

// ExecutionErrorInfo is a recorded error event. Only Acknowledged, AcknowledgedAt and
// AcknowledgedBy are ever written by this package.
type ExecutionErrorInfo struct {
	ID                int64
	ErrorID           uuid.UUID
	Type              string
	ReferenceID       int64
	DeploymentID      string
	ProcessInstanceID int64
	ErrorMsg          string
	ErrorDate         time.Time
	Acknowledged      bool
	AcknowledgedAt    time.Time
	AcknowledgedBy    string
}

func errorInfoFromRow(row errsqlc.Executionerrorinfo) ExecutionErrorInfo {
	return ExecutionErrorInfo{
		ID:                row.ID,
		ErrorID:           row.Errorid,
		Type:              row.Type,
		ReferenceID:       row.Referenceid,
		DeploymentID:      row.Deploymentid.String,
		ProcessInstanceID: row.Processinstanceid.Int64,
		ErrorMsg:          row.Errormsg,
		ErrorDate:         row.Errordate.Time,
		Acknowledged:      row.Acknowledged,
		AcknowledgedAt:    row.Acknowledgedat.Time,
		AcknowledgedBy:    row.Acknowledgedby.String,
	}
}
