package errack

import (
	"fmt"

	"github.com/remiges-tech/logharbour/logharbour"
)

// AuditSink receives one report per acknowledged error and one per failed run.
// Reports are emitted after the transaction outcome is known and cannot change it.
type AuditSink interface {
	Acknowledged(rec ExecutionErrorInfo, reason string)
	RunFailed(errorType, kind string, err error)
}

// LogSink writes audit reports through logharbour. Acknowledgments are logged as
// data changes on ExecutionErrorInfo.
type LogSink struct {
	Logger *logharbour.Logger
}

func (s LogSink) Acknowledged(rec ExecutionErrorInfo, reason string) {
	s.Logger.LogDataChange(fmt.Sprintf("Error %d auto acknowledged: %s", rec.ID, reason), logharbour.ChangeInfo{
		Entity: "ExecutionErrorInfo",
		Op:     "AutoAck",
		Changes: []logharbour.ChangeDetail{
			{Field: "acknowledged", OldVal: false, NewVal: true},
			{Field: "acknowledgedby", OldVal: "", NewVal: rec.AcknowledgedBy},
		},
	})
}

func (s LogSink) RunFailed(errorType, kind string, err error) {
	s.Logger.Error(err).LogActivity("Auto ack run failed", map[string]any{
		"errorType": errorType,
		"kind":      kind,
	})
}
