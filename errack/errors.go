package errack

import (
	"errors"
	"fmt"
)

var (
	ErrMissingParam          = errors.New("required parameter missing")
	ErrUnknownUnit           = errors.New("unknown persistence unit")
	ErrInvalidTimeExpression = errors.New("invalid time expression")
	ErrRuleAlreadyRegistered = errors.New("ack rule already registered for this error type")
	ErrRuleNotFound          = errors.New("no ack rule registered for this error type")
	ErrJobAlreadyRegistered  = errors.New("job already registered with this name")
	ErrJobNotFound           = errors.New("job not found")
)

// Persistence operations reported in PersistenceFailure.Op.
const (
	OpBegin       = "begin"
	OpAcknowledge = "acknowledge"
	OpCommit      = "commit"
)

// ConfigurationError is returned when a command parameter is missing or malformed.
// It is raised before any store access, so nothing has been touched.
type ConfigurationError struct {
	BaseErr error
	Param   string
	Value   string
}

func (e *ConfigurationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%v: %s=%q", e.BaseErr, e.Param, e.Value)
	}
	return fmt.Sprintf("%v: %s", e.BaseErr, e.Param)
}

func (e *ConfigurationError) Unwrap() error {
	return e.BaseErr
}

// PersistenceFailure wraps a failure to open, update or commit the acknowledgment
// transaction. The transaction has been rolled back when this is returned.
type PersistenceFailure struct {
	Op   string
	Unit string
	Err  error
}

func (e *PersistenceFailure) Error() string {
	return fmt.Sprintf("persistence failure during %s on unit %s: %v", e.Op, e.Unit, e.Err)
}

func (e *PersistenceFailure) Unwrap() error {
	return e.Err
}

// RuleEvaluationFailure wraps an error from an ack rule's eligibility query.
type RuleEvaluationFailure struct {
	ErrorType string
	Err       error
}

func (e *RuleEvaluationFailure) Error() string {
	return fmt.Sprintf("ack rule for %s failed: %v", e.ErrorType, e.Err)
}

func (e *RuleEvaluationFailure) Unwrap() error {
	return e.Err
}

// Kind maps err to one of the ErrCode* constants.
func Kind(err error) string {
	var cfgErr *ConfigurationError
	var persistErr *PersistenceFailure
	var ruleErr *RuleEvaluationFailure
	switch {
	case errors.As(err, &cfgErr):
		return ErrCodeConfiguration
	case errors.As(err, &persistErr):
		return ErrCodePersistence
	case errors.As(err, &ruleErr):
		return ErrCodeRuleEvaluation
	default:
		return ErrCodeUnknown
	}
}

// MsgID returns the message ID matching Kind(err).
func MsgID(err error) int {
	switch Kind(err) {
	case ErrCodeConfiguration:
		return MsgIDConfiguration
	case ErrCodePersistence:
		return MsgIDPersistence
	case ErrCodeRuleEvaluation:
		return MsgIDRuleEvaluation
	default:
		return MsgIDUnknown
	}
}
