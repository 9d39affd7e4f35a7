package logger

// Config configures the zap-backed logger. Level is the minimum level
// (debug, info, warn, error). Format is accepted for compatibility; output
// is always JSON.
type Config struct {
	Level       string   `env:"LOG_LEVEL"       yaml:"level"`
	Format      string   `env:"LOG_FORMAT"      yaml:"format"`
	Development bool     `env:"LOG_DEVELOPMENT" yaml:"development"`
	OutputPaths []string `yaml:"output_paths"`
}

const (
	DefaultLevel  = "info"
	DefaultFormat = "json"
)

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if len(c.OutputPaths) == 0 {
		c.OutputPaths = []string{"stdout"}
	}
}
