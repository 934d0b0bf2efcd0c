package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/remiges-tech/errack/errack"
)

const (
	DefaultAppName       = "errack"
	DefaultRetryInterval = "1m"
	DefaultMaxRetries    = 3
)

// AppConfig is the configuration of errackd.
type AppConfig struct {
	AppName string `json:"appname" validate:"required"`
	// PersistenceUnits maps unit names, as used in the EmfName job parameter, to DSNs.
	PersistenceUnits map[string]string `json:"persistenceunits" validate:"required,min=1,dive,keys,required,endkeys,required"`
	Redis            RedisConfig       `json:"redis"`
	MetricsPort      string            `json:"metricsport" validate:"omitempty,numeric"`
	AdminPort        string            `json:"adminport" validate:"omitempty,numeric"`
	RetryInterval    string            `json:"retryinterval" validate:"timeexpr"`
	MaxRetries       int               `json:"maxretries" validate:"gte=0"`
	Migrate          bool              `json:"migrate"`
	Jobs             []JobConfig       `json:"jobs" validate:"required,min=1,dive"`
}

// RedisConfig is optional; with no Addr run statuses are not recorded.
type RedisConfig struct {
	Addr     string `json:"addr" validate:"omitempty,hostname_port"`
	Password string `json:"password"`
	DB       int    `json:"db" validate:"gte=0"`
}

// JobConfig schedules one auto-ack rule.
type JobConfig struct {
	Name      string            `json:"name"`
	ErrorType string            `json:"errortype" validate:"required"`
	Params    map[string]string `json:"params"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("timeexpr", func(fl validator.FieldLevel) bool {
		_, err := errack.ParseTimeExpression(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// ApplyDefaults fills in unset optional values.
func (c *AppConfig) ApplyDefaults() {
	if c.AppName == "" {
		c.AppName = DefaultAppName
	}
	if c.RetryInterval == "" {
		c.RetryInterval = DefaultRetryInterval
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	for i := range c.Jobs {
		if c.Jobs[i].Name == "" {
			c.Jobs[i].Name = strings.ToLower(c.Jobs[i].ErrorType) + "-errors"
		}
	}
}

// Validate checks the struct tags and that every job names a known persistence unit
// and a unique job name.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(c.Jobs))
	for _, job := range c.Jobs {
		if seen[job.Name] {
			return fmt.Errorf("invalid config: duplicate job name %s", job.Name)
		}
		seen[job.Name] = true

		unit := job.Params[errack.ParamEmfName]
		if unit == "" {
			return fmt.Errorf("invalid config: job %s has no %s", job.Name, errack.ParamEmfName)
		}
		if _, ok := c.PersistenceUnits[unit]; !ok {
			return fmt.Errorf("invalid config: job %s uses unknown persistence unit %s", job.Name, unit)
		}
	}
	return nil
}

// RetryIntervalDuration returns RetryInterval parsed as a time expression.
func (c *AppConfig) RetryIntervalDuration() time.Duration {
	d, err := errack.ParseTimeExpression(c.RetryInterval)
	if err != nil {
		return 0
	}
	return d
}

// LoadAppConfig loads c from cs, applies defaults and validates it.
func LoadAppConfig(cs Config, c *AppConfig) error {
	if err := Load(cs, c); err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	c.ApplyDefaults()
	return c.Validate()
}
