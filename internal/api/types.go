package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a queue entry in a transport-friendly format.
type QueueItem struct {
	ID             int64         `json:"id"`
	SourcePath     string        `json:"sourcePath"`
	StagedPath     string        `json:"stagedPath,omitempty"`
	Fingerprint    string        `json:"fingerprint,omitempty"`
	Status         string        `json:"status"`
	ProcessingLane string        `json:"processingLane"`
	Progress       QueueProgress `json:"progress"`
	InvoiceNumber  string        `json:"invoiceNumber,omitempty"`
	CompanyName    string        `json:"companyName,omitempty"`
	GSTNumber      string        `json:"gstNumber,omitempty"`
	Amount         string        `json:"amount,omitempty"`
	InvoiceDate    string        `json:"invoiceDate,omitempty"`
	FinalFile      string        `json:"finalFile,omitempty"`
	ErrorMessage   string        `json:"errorMessage"`
	CreatedAt      string        `json:"createdAt,omitempty"`
	UpdatedAt      string        `json:"updatedAt,omitempty"`
	NeedsReview    bool          `json:"needsReview"`
	ReviewReason   string        `json:"reviewReason,omitempty"`
}

// QueueProgress captures stage progress information for a queue entry.
type QueueProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	QueueStats  map[string]int `json:"queueStats"`
	LastError   string         `json:"lastError,omitempty"`
	LastItem    *QueueItem     `json:"lastItem,omitempty"`
	StageHealth []StageHealth  `json:"stageHealth"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// StatusLine is a labelled check result for human-readable status output.
// Severity is one of "ok", "info", "warn", or "error".
type StatusLine struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}
