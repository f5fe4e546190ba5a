package config

import (
	"github.com/zf1976/pancli/pkg/logging"
)

// SetupLogger applies the logging section to the process-wide logger.
func (c *Config) SetupLogger() error {
	logging.SetOutputFormat(c.Logging.Format)
	if err := logging.SetOutputs(c.Logging.Output, c.Logging.FileMaxSizeMB, c.Logging.FilesKeep); err != nil {
		return err
	}
	logging.SetLevel(c.Logging.Level)
	return nil
}
