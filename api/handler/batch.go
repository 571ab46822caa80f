package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sessionprobe/checker"
	"github.com/use-agent/sessionprobe/models"
	"github.com/use-agent/sessionprobe/webhook"
)

// batchStore holds all in-flight and completed batch jobs.
var batchStore sync.Map

func init() {
	// Background goroutine to expire batch jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			batchStore.Range(func(key, value any) bool {
				job := value.(*models.BatchJob)
				if job.CreatedAt < cutoff {
					batchStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// PostBatch returns a handler for POST /api/v1/check/batch.
// It validates the request, creates a batch job, and launches goroutines
// to check each credential concurrently.
func PostBatch(ck *checker.Checker, maxConcurrent int, notifier *webhook.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchCheckRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		jobID := "batch-" + randomID()
		job := models.NewBatchJob(jobID, len(req.Items))
		batchStore.Store(jobID, job)

		// Launch checking in background.
		go runBatch(ck, maxConcurrent, notifier, job, req)

		c.JSON(http.StatusOK, models.BatchResponse{
			ID:     jobID,
			Status: "processing",
			Total:  len(req.Items),
		})
	}
}

// GetBatch returns a handler for GET /api/v1/check/batch/:id.
func GetBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		val, ok := batchStore.Load(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "batch job not found",
				},
			})
			return
		}

		job := val.(*models.BatchJob)
		c.JSON(http.StatusOK, job.Snapshot())
	}
}

// runBatch processes all items in a batch job. Each item is an independent
// unit of work with its own cookie set and session; concurrency is limited
// by a semaphore. Results land on the job through its mutex-guarded methods
// because status polls read the job while workers are still running.
func runBatch(ck *checker.Checker, maxConcurrent int, notifier *webhook.Notifier, job *models.BatchJob, req models.BatchCheckRequest) {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	sem := make(chan struct{}, maxConcurrent)

	var wg sync.WaitGroup
	var failed atomic.Int32

	for i, item := range req.Items {
		wg.Add(1)
		go func(idx int, item models.BatchItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resp := checkOne(ck, item, req.Mode)
			if !resp.Success {
				failed.Add(1)
			}
			job.RecordResult(idx, resp)
		}(i, item)
	}

	wg.Wait()

	failedCount := int(failed.Load())
	var status string
	switch {
	case failedCount == job.Total:
		status = "failed"
	case failedCount > 0:
		status = "partial"
	default:
		status = "completed"
	}
	job.Finish(status)

	slog.Info("batch job finished",
		"id", job.ID,
		"status", status,
		"failed", failedCount,
		"total", job.Total,
	)

	if req.WebhookURL != "" && notifier != nil {
		notifier.DeliverAsync(req.WebhookURL, &webhook.Event{
			Type:      "batch.completed",
			JobID:     job.ID,
			Timestamp: time.Now().Unix(),
			Data:      job.Snapshot(),
		})
	}
}

// checkOne runs a single credential check with the batch's shared mode. The
// item's caller-supplied name is echoed back on the result.
func checkOne(ck *checker.Checker, item models.BatchItem, mode string) *models.CheckResponse {
	creq := &models.CheckRequest{
		Content:    item.Content,
		FormatHint: item.FormatHint,
		Mode:       mode,
	}
	creq.Defaults()

	resp, err := ck.Check(context.Background(), creq)
	if err != nil {
		checkErr, ok := err.(*models.CheckError)
		if !ok {
			checkErr = models.NewCheckError(models.ErrCodeInternal, err.Error(), err)
		}
		resp = &models.CheckResponse{
			Success: false,
			Error:   checkErr.ToDetail(),
		}
	}
	resp.Name = item.Name
	return resp
}

// randomID generates a short random hex string for job IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
