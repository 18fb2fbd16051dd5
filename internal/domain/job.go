package domain

import "time"

// JobStatus enumerates the lifecycle states shared by generation and
// mockup jobs.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether a poll loop may stop on this status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// GenerationJob tracks one prompt-to-image unit of work. A regenerate
// creates a fresh job with a higher epoch; the superseded job is never
// mutated, its late poll results are simply ignored.
type GenerationJob struct {
	ID             string    `json:"id"`
	Prompt         string    `json:"prompt"`
	Status         JobStatus `json:"status"`
	Epoch          uint64    `json:"epoch"`
	ResultImageURL string    `json:"result_image_url,omitempty"`
	ResultImageID  string    `json:"result_image_id,omitempty"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MockupJob tracks one render task against the print provider. One job
// is live per (product, variant) selection; switching variants bumps the
// epoch so the old task's completion is discarded.
type MockupJob struct {
	TaskKey   string    `json:"task_key"`
	ProductID int64     `json:"product_id"`
	VariantID int64     `json:"variant_id"`
	Status    JobStatus `json:"status"`
	Epoch     uint64    `json:"epoch"`
	MockupURL string    `json:"mockup_url,omitempty"`
	Error     string    `json:"error,omitempty"`
}
