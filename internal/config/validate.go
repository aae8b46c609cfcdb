package config

import (
	"errors"
	"fmt"
	"strings"

	"tapeshelf/internal/failures"
)

// Validate ensures the configuration is usable. Catalog and roots may be left
// empty here because CLI flags can still supply them; RequireExportPaths
// checks them once a command actually needs them.
func (c *Config) Validate() error {
	if err := c.validateExport(); err != nil {
		return failures.Wrap(failures.ErrConfig, "config", "validate", "", err)
	}
	if err := c.validateLogging(); err != nil {
		return failures.Wrap(failures.ErrConfig, "config", "validate", "", err)
	}
	return nil
}

// RequireExportPaths verifies the catalog, audio root, and output root are set.
func (c *Config) RequireExportPaths() error {
	missing := make([]string, 0, 3)
	if strings.TrimSpace(c.Paths.Catalog) == "" {
		missing = append(missing, "paths.catalog")
	}
	if strings.TrimSpace(c.Paths.AudioRoot) == "" {
		missing = append(missing, "paths.audio_root")
	}
	if strings.TrimSpace(c.Paths.OutputRoot) == "" {
		missing = append(missing, "paths.output_root")
	}
	if len(missing) > 0 {
		return failures.Wrap(failures.ErrConfig, "config", "paths",
			fmt.Sprintf("%s must be set (config file, environment, or flags)", strings.Join(missing, ", ")), nil)
	}
	return nil
}

func (c *Config) validateExport() error {
	if err := ensurePositiveMap(map[string]int{
		"export.batch_size":      c.Export.BatchSize,
		"export.segment_workers": c.Export.SegmentWorkers,
		"export.final_workers":   c.Export.FinalWorkers,
		"sync.request_timeout":   c.Sync.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Export.AACQuality < 0 {
		return errors.New("export.aac_quality must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
