package elastic

import (
	"time"
)

// Config holds the connection settings for one Elasticsearch endpoint.
// Credentials and transport tuning never participate in schema cache
// keys - they do not affect the resolved schema.
type Config struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	UseSSL    bool   `yaml:"use_ssl"`
	VerifySSL bool   `yaml:"verify_ssl"`

	// Timeout bounds one HTTP request.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries after the first attempt for
	// transient failures (network errors, 429, 5xx).
	MaxRetries int `yaml:"max_retries"`

	// RetryInterval is the wait before the first retry; each further
	// retry multiplies it by RetryBackoff.
	RetryInterval time.Duration `yaml:"retry_interval"`
	RetryBackoff  float64       `yaml:"retry_backoff"`
}

// DefaultConfig returns the connection defaults.
func DefaultConfig() Config {
	return Config{
		Host:          "localhost",
		Port:          9200,
		VerifySSL:     true,
		Timeout:       30 * time.Second,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
		RetryBackoff:  2.0,
	}
}
