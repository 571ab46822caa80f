package models

import (
	"sync"
	"time"
)

// BatchCheckRequest is the payload for POST /api/v1/check/batch.
type BatchCheckRequest struct {
	// Items is the list of credential blobs to check. Required.
	Items []BatchItem `json:"items" binding:"required,min=1,max=100,dive"`

	// Mode is the shared validation path applied to every item.
	// Default: "plain".
	Mode string `json:"mode,omitempty" binding:"omitempty,oneof=plain browser"`

	// WebhookURL, when set, receives a signed "batch.completed" event once
	// all items have settled.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`
}

// BatchItem is one credential blob inside a batch.
type BatchItem struct {
	// Content is the raw credential blob. Required.
	Content string `json:"content" binding:"required"`

	// FormatHint is the declared format of Content (file extension).
	FormatHint string `json:"format_hint,omitempty"`

	// Name is an optional caller-supplied label echoed back in results.
	Name string `json:"name,omitempty"`
}

// BatchResponse is the immediate response for POST /api/v1/check/batch.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchStatusResponse is the response for GET /api/v1/check/batch/:id.
type BatchStatusResponse struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	Completed int              `json:"completed"`
	Total     int              `json:"total"`
	Results   []*CheckResponse `json:"results,omitempty"`
}

// BatchJob tracks an in-progress batch check operation. Worker goroutines
// record results while status polls read them, so all access to the mutable
// fields goes through the mutex-guarded methods.
type BatchJob struct {
	ID        string
	Total     int
	CreatedAt int64 // unix timestamp

	mu        sync.Mutex
	status    string // "processing", "completed", "failed", "partial"
	completed int
	results   []*CheckResponse
}

// NewBatchJob creates a job in the "processing" state with room for total
// results.
func NewBatchJob(id string, total int) *BatchJob {
	return &BatchJob{
		ID:        id,
		Total:     total,
		CreatedAt: time.Now().Unix(),
		status:    "processing",
		results:   make([]*CheckResponse, total),
	}
}

// RecordResult stores one finished item and bumps the completion counter.
func (j *BatchJob) RecordResult(idx int, resp *CheckResponse) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results[idx] = resp
	j.completed++
}

// Finish moves the job to its terminal status.
func (j *BatchJob) Finish(status string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = status
}

// Snapshot returns a consistent view of the job for status responses.
// Individual CheckResponse values are written once before being recorded and
// never mutated afterwards, so sharing the pointers is safe.
func (j *BatchJob) Snapshot() BatchStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	results := make([]*CheckResponse, len(j.results))
	copy(results, j.results)
	return BatchStatusResponse{
		ID:        j.ID,
		Status:    j.status,
		Completed: j.completed,
		Total:     j.Total,
		Results:   results,
	}
}
