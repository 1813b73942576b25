package config

const (
	defaultInboxDir              = "~/inbox"
	defaultStagingDir            = "~/.local/share/billfold/staging"
	defaultLibraryDir            = "~/invoices"
	defaultReviewDir             = "~/review"
	defaultLogDir                = "~/.local/share/billfold/logs"
	defaultLogRetentionDays      = 60
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultConflictMode          = "auto-rename"
	defaultMaxFileSizeMB         = 50
	defaultNotifyRequestTimeout  = 10
	defaultQueuePollInterval     = 5
	defaultErrorRetryInterval    = 10
	defaultHeartbeatInterval     = 15
	defaultHeartbeatTimeout      = 120
	defaultInboxPollInterval     = 5
	defaultInboxMinFileAgeSecond = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InboxDir:   defaultInboxDir,
			StagingDir: defaultStagingDir,
			LibraryDir: defaultLibraryDir,
			ReviewDir:  defaultReviewDir,
			LogDir:     defaultLogDir,
		},
		Organizer: Organizer{
			ConflictMode:     defaultConflictMode,
			AmountInFilename: true,
		},
		Extraction: Extraction{
			MaxFileSizeMB: defaultMaxFileSizeMB,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Detected:       true,
			Filed:          true,
			Review:         true,
			Organize:       true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
			InboxPollInterval:  defaultInboxPollInterval,
			InboxMinFileAge:    defaultInboxMinFileAgeSecond,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
