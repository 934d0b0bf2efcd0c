package errack_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/remiges-tech/errack/errack"
	"github.com/remiges-tech/logharbour/logharbour"
	"github.com/stretchr/testify/assert"
)

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := logharbour.NewLogger(logharbour.NewLoggerContext(logharbour.DefaultPriority), "test", &buf)
	sink := errack.LogSink{Logger: logger}

	sink.Acknowledged(errack.ExecutionErrorInfo{ID: 41, Acknowledged: true, AcknowledgedBy: errack.AutoAckUser}, errack.JobAckReason)
	sink.Acknowledged(errack.ExecutionErrorInfo{ID: 42, Acknowledged: true, AcknowledgedBy: errack.AutoAckUser}, errack.JobAckReason)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, errack.JobAckReason))
	assert.Contains(t, out, "Error 41 auto acknowledged")
	assert.Contains(t, out, "Error 42 auto acknowledged")
}
