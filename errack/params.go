package errack

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Parameter names understood by the auto-ack command.
const (
	ParamEmfName   = "EmfName"
	ParamSingleRun = "SingleRun"
	ParamNextRun   = "NextRun"
)

// DefaultNextRun applies when NextRun is not given.
const DefaultNextRun = 24 * time.Hour

// Params are the resolved command parameters.
type Params struct {
	EmfName   string
	DB        DB
	SingleRun bool
	NextRun   time.Duration
}

var timeExprPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

var timeExprUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseTimeExpression parses expressions of the form <integer><unit>, where unit is
// one of s, m, h or d, e.g. "30s", "5h", "1d". The result must be positive.
func ParseTimeExpression(expr string) (time.Duration, error) {
	m := timeExprPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return 0, ErrInvalidTimeExpression
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidTimeExpression
	}
	unit := timeExprUnits[m[2]]
	if n > math.MaxInt64/int64(unit) {
		return 0, ErrInvalidTimeExpression
	}
	return time.Duration(n) * unit, nil
}

// parseSingleRun treats anything that is not a boolean literal as false.
func parseSingleRun(params map[string]string) bool {
	singleRun, err := strconv.ParseBool(strings.TrimSpace(params[ParamSingleRun]))
	if err != nil {
		return false
	}
	return singleRun
}

// ResolveParams validates the command parameters and resolves the persistence unit.
func ResolveParams(params map[string]string, units Units) (Params, error) {
	emfName := strings.TrimSpace(params[ParamEmfName])
	if emfName == "" {
		return Params{}, &ConfigurationError{BaseErr: ErrMissingParam, Param: ParamEmfName}
	}
	db, ok := units[emfName]
	if !ok || db == nil {
		return Params{}, &ConfigurationError{BaseErr: ErrUnknownUnit, Param: ParamEmfName, Value: emfName}
	}

	nextRun := DefaultNextRun
	if expr, ok := params[ParamNextRun]; ok {
		d, err := ParseTimeExpression(expr)
		if err != nil {
			return Params{}, &ConfigurationError{BaseErr: err, Param: ParamNextRun, Value: expr}
		}
		nextRun = d
	}

	return Params{
		EmfName:   emfName,
		DB:        db,
		SingleRun: parseSingleRun(params),
		NextRun:   nextRun,
	}, nil
}
