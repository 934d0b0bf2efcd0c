package errack

// Error codes for machine-to-machine communication, one per failure kind.
const (
	ErrCodeConfiguration  = "configerror"
	ErrCodePersistence    = "persistence_failure"
	ErrCodeRuleEvaluation = "rule_failure"
	ErrCodeUnknown        = "unknown"
)

// Message IDs used when failures are reported through the admin web service.
const (
	MsgIDConfiguration  = 1
	MsgIDPersistence    = 2
	MsgIDRuleEvaluation = 3
	MsgIDUnknown        = 9
)
