package wscutils

const (
	SuccessStatus = "success"
	ErrorStatus   = "error"
)

// Error codes returned in ErrorMessage.ErrCode. The errack run failure kinds
// (configerror, persistence_failure, rule_failure) are passed through unchanged.
const (
	ErrcodeUnknown        = "unknown"
	ErrcodeInvalidJson    = "invalid_json"
	ErrcodeInvalidRequest = "invalid_request"
	ErrcodeJobNotFound    = "job_not_found"
	ErrcodeNoRunStatus    = "no_run_status"
	ErrcodeStatusFailed   = "status_unavailable"
)

// DefaultMsgID is used for error codes that have no entry in the catalogue.
const DefaultMsgID = 9999

func defaultErrorTypes() map[string]int {
	return map[string]int{
		ErrcodeUnknown:        DefaultMsgID,
		ErrcodeInvalidJson:    1001,
		ErrcodeInvalidRequest: 1002,
		ErrcodeJobNotFound:    1003,
		ErrcodeNoRunStatus:    1004,
		ErrcodeStatusFailed:   1005,
		"configerror":         1,
		"persistence_failure": 2,
		"rule_failure":        3,
		"required":            1101,
		"max":                 1102,
	}
}
