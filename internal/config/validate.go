package config

import (
	"errors"
	"fmt"
	"regexp"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOrganizer(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.InboxDir == "" {
		return errors.New("paths.inbox_dir must be set")
	}
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	return nil
}

func (c *Config) validateOrganizer() error {
	switch c.Organizer.ConflictMode {
	case "overwrite", "auto-rename", "skip":
		return nil
	default:
		return fmt.Errorf("organizer.conflict_mode must be one of overwrite, auto-rename, skip (got %q)", c.Organizer.ConflictMode)
	}
}

func (c *Config) validateExtraction() error {
	if c.Extraction.MaxFileSizeMB <= 0 {
		return errors.New("extraction.max_file_size_mb must be positive")
	}
	for field, exprs := range c.Extraction.Patterns {
		for _, expr := range exprs {
			if _, err := regexp.Compile(expr); err != nil {
				return fmt.Errorf("extraction.patterns.%s: invalid pattern %q: %w", field, expr, err)
			}
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"workflow.inbox_poll_interval":  c.Workflow.InboxPollInterval,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	if c.Workflow.InboxMinFileAge < 0 {
		return errors.New("workflow.inbox_min_file_age must be >= 0")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
