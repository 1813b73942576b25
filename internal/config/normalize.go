package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOrganizer()
	c.normalizeExtraction()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InboxDir, err = expandPath(c.Paths.InboxDir); err != nil {
		return fmt.Errorf("paths.inbox_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.ReviewDir, err = expandPath(c.Paths.ReviewDir); err != nil {
		return fmt.Errorf("paths.review_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOrganizer() {
	c.Organizer.ConflictMode = strings.ToLower(strings.TrimSpace(c.Organizer.ConflictMode))
	if c.Organizer.ConflictMode == "" {
		c.Organizer.ConflictMode = defaultConflictMode
	}
}

func (c *Config) normalizeExtraction() {
	if c.Extraction.MaxFileSizeMB <= 0 {
		c.Extraction.MaxFileSizeMB = defaultMaxFileSizeMB
	}
	if len(c.Extraction.Patterns) > 0 {
		patterns := make(map[string][]string, len(c.Extraction.Patterns))
		for field, exprs := range c.Extraction.Patterns {
			key := strings.ToLower(strings.TrimSpace(field))
			if key == "" {
				continue
			}
			kept := make([]string, 0, len(exprs))
			for _, expr := range exprs {
				if trimmed := strings.TrimSpace(expr); trimmed != "" {
					kept = append(kept, trimmed)
				}
			}
			if len(kept) > 0 {
				patterns[key] = kept
			}
		}
		c.Extraction.Patterns = patterns
	}
	if len(c.Extraction.GSTCompanyMappings) > 0 {
		mappings := make(map[string]string, len(c.Extraction.GSTCompanyMappings))
		for gstin, company := range c.Extraction.GSTCompanyMappings {
			key := strings.ToUpper(strings.TrimSpace(gstin))
			value := strings.TrimSpace(company)
			if key == "" || value == "" {
				continue
			}
			mappings[key] = value
		}
		c.Extraction.GSTCompanyMappings = mappings
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("BILLFOLD_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
