package probe

import (
	"fmt"
	"time"

	"github.com/samijaber1/aegis-uptime/internal/sla"
)

// Check is an uptime check definition. Each enabled check is driven by its
// own independent timer.
type Check struct {
	ID              string            `yaml:"id" json:"id"`
	Name            string            `yaml:"name" json:"name"`
	URL             string            `yaml:"url" json:"url"`
	Method          string            `yaml:"method,omitempty" json:"method,omitempty"`
	Headers         map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Body            string            `yaml:"body,omitempty" json:"body,omitempty"`
	Timeout         string            `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Interval        string            `yaml:"interval" json:"interval"`
	Regions         []string          `yaml:"regions,omitempty" json:"regions,omitempty"`
	AcceptedCodes   []int             `yaml:"acceptedCodes,omitempty" json:"acceptedCodes,omitempty"`
	ExpectedContent string            `yaml:"expectedContent,omitempty" json:"expectedContent,omitempty"`
	FollowRedirects bool              `yaml:"followRedirects,omitempty" json:"followRedirects,omitempty"`
	SkipTLSVerify   bool              `yaml:"skipTlsVerify,omitempty" json:"skipTlsVerify,omitempty"`
	Enabled         bool              `yaml:"enabled" json:"enabled"`
}

// DefaultTimeout applies when a check has no timeout configured.
const DefaultTimeout = 5 * time.Second

// Validate checks the structural invariants of a check definition.
func (c *Check) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("check id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("check %s: name is required", c.ID)
	}
	if c.URL == "" {
		return fmt.Errorf("check %s: url is required", c.ID)
	}
	if c.Interval == "" {
		return fmt.Errorf("check %s: interval is required", c.ID)
	}
	if _, err := sla.ParseDuration(c.Interval); err != nil {
		return fmt.Errorf("check %s: interval: %w", c.ID, err)
	}
	if c.Timeout != "" {
		if _, err := sla.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("check %s: timeout: %w", c.ID, err)
		}
	}
	for _, code := range c.AcceptedCodes {
		if code < 100 || code > 599 {
			return fmt.Errorf("check %s: invalid accepted status code %d", c.ID, code)
		}
	}
	return nil
}

// IntervalDuration returns the parsed poll interval.
func (c *Check) IntervalDuration() time.Duration {
	d, err := sla.ParseDuration(c.Interval)
	if err != nil {
		return time.Minute
	}
	return d
}

// TimeoutDuration returns the parsed probe timeout, or DefaultTimeout.
func (c *Check) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return DefaultTimeout
	}
	d, err := sla.ParseDuration(c.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

// EffectiveRegions returns the configured regions, defaulting to one
// unnamed region so every check probes at least once per tick.
func (c *Check) EffectiveRegions() []string {
	if len(c.Regions) == 0 {
		return []string{"default"}
	}
	return c.Regions
}

// acceptsStatus reports whether the status code counts as a success.
// With no accepted set configured, any 2xx passes.
func (c *Check) acceptsStatus(code int) bool {
	if len(c.AcceptedCodes) == 0 {
		return code >= 200 && code < 300
	}
	for _, accepted := range c.AcceptedCodes {
		if code == accepted {
			return true
		}
	}
	return false
}

// Result is the outcome of a single probe. Failures are recorded as data,
// never raised to the caller.
type Result struct {
	ID           string        `json:"id"`
	CheckID      string        `json:"checkId"`
	Timestamp    time.Time     `json:"timestamp"`
	Region       string        `json:"region"`
	Success      bool          `json:"success"`
	ResponseTime time.Duration `json:"responseTime"`
	StatusCode   int           `json:"statusCode,omitempty"`
	Error        string        `json:"error,omitempty"`
	ContentMatch *bool         `json:"contentMatch,omitempty"`
	TLSValid     *bool         `json:"tlsValid,omitempty"`
}

// CheckWithFile pairs a check with its source file path.
type CheckWithFile struct {
	Check *Check
	File  string
}
