package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/rohankatakam/codefolio/internal/errors"
)

// ValidationContext specifies what configuration is required
type ValidationContext string

const (
	// ValidationContextServe - folio serve needs data, chart, server and prefs settings
	ValidationContextServe ValidationContext = "serve"
	// ValidationContextRender - render/stats/scrub need data and chart settings
	ValidationContextRender ValidationContext = "render"
	// ValidationContextImport - import needs a usable line store
	ValidationContextImport ValidationContext = "import"
	// ValidationContextAll - validate all configuration
	ValidationContextAll ValidationContext = "all"
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn))
		}
	}

	return sb.String()
}

// Err returns the result as a config error, or nil when valid
func (vr *ValidationResult) Err() error {
	if !vr.HasErrors() {
		return nil
	}
	return errors.ConfigErrorf("%s", strings.TrimSpace(vr.Error()))
}

// Validate validates configuration for the given context
func (c *Config) Validate(ctx ValidationContext) *ValidationResult {
	result := &ValidationResult{Valid: true}

	switch ctx {
	case ValidationContextServe:
		c.validateData(result)
		c.validateChart(result)
		c.validateInteraction(result)
		c.validateServer(result)
		c.validatePrefs(result)
	case ValidationContextRender:
		c.validateData(result)
		c.validateChart(result)
		c.validateInteraction(result)
	case ValidationContextImport:
		c.validateStorage(result)
	case ValidationContextAll:
		c.validateData(result)
		c.validateChart(result)
		c.validateInteraction(result)
		c.validateServer(result)
		c.validateStorage(result)
		c.validatePrefs(result)
		c.validateCache(result)
	}

	return result
}

func (c *Config) validateData(result *ValidationResult) {
	if c.Data.Source == "" {
		result.AddError("data.source is required but not set")
	}
	if c.Data.CommitURLBase == "" {
		result.AddWarning("data.commit_url_base is not set, commit links will be bare ids")
	} else if !strings.HasSuffix(c.Data.CommitURLBase, "/") {
		result.AddWarning("data.commit_url_base %q does not end with '/'", c.Data.CommitURLBase)
	}
	if c.Data.Watch && strings.Contains(c.Data.Source, "://") {
		result.AddWarning("data.watch only applies to local files, ignoring for %s", c.Data.Source)
	}
}

func (c *Config) validateChart(result *ValidationResult) {
	ch := c.Chart
	if ch.Width <= 0 || ch.Height <= 0 {
		result.AddError("chart size must be positive, got %.0fx%.0f", ch.Width, ch.Height)
	}
	if ch.Margin.Left+ch.Margin.Right >= ch.Width || ch.Margin.Top+ch.Margin.Bottom >= ch.Height {
		result.AddError("chart margins leave no usable area")
	}
	if ch.RadiusMin < 0 || ch.RadiusMax < ch.RadiusMin {
		result.AddError("chart radius band [%.1f, %.1f] is invalid", ch.RadiusMin, ch.RadiusMax)
	}
	if ch.Transition < 0 {
		result.AddError("chart.transition must not be negative")
	}
	if ch.XTicks <= 0 || ch.YTicks <= 0 {
		result.AddWarning("chart tick counts should be positive, will use 10")
	}
}

func (c *Config) validateInteraction(result *ValidationResult) {
	in := c.Interaction
	if in.ThrottlePerSecond < 0 {
		result.AddError("interaction.throttle_per_second must not be negative")
	}
	if in.ThrottlePerSecond > 0 && in.Burst < 1 {
		result.AddError("interaction.burst must be at least 1 when throttling")
	}
	if in.InitialProgress < 0 || in.InitialProgress > 100 {
		result.AddError("interaction.initial_progress must be within [0, 100], got %.1f", in.InitialProgress)
	}
}

func (c *Config) validateServer(result *ValidationResult) {
	if c.Server.Addr == "" {
		result.AddError("server.addr is required but not set")
		return
	}
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		result.AddError("server.addr %q is invalid: %v", c.Server.Addr, err)
	}
}

func (c *Config) validateStorage(result *ValidationResult) {
	switch c.Storage.Type {
	case "sqlite":
		if c.Storage.LocalPath == "" {
			result.AddError("storage.local_path is required for sqlite storage")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			result.AddError("POSTGRES_DSN is required for postgres storage")
		} else if !strings.HasPrefix(c.Storage.PostgresDSN, "postgres://") && !strings.HasPrefix(c.Storage.PostgresDSN, "postgresql://") {
			result.AddError("POSTGRES_DSN must start with postgres:// or postgresql://")
		}
	default:
		result.AddError("storage.type must be sqlite or postgres, got %q", c.Storage.Type)
	}
}

func (c *Config) validatePrefs(result *ValidationResult) {
	if c.Storage.PrefsPath == "" {
		result.AddWarning("storage.prefs_path is not set, theme changes will not persist")
	}
}

func (c *Config) validateCache(result *ValidationResult) {
	if c.Cache.TTL <= 0 {
		result.AddWarning("cache.ttl is not positive, render cache entries never expire")
	}
}
