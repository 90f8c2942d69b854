package middleware

import (
	"context"
	"log"
	"time"

	"admission-gateway/internal/models"
	"admission-gateway/internal/repository"
	"github.com/gin-gonic/gin"
)

const (
	logBatchSize     = 100
	logFlushInterval = 5 * time.Second
)

// RequestLogWriter batches request logs into the database off the request
// path. One writer per process, passed to the middleware explicitly.
type RequestLogWriter struct {
	repo *repository.RequestLogRepository
	ch   chan models.RequestLog
	done chan struct{}
}

func NewRequestLogWriter(repo *repository.RequestLogRepository, bufferSize int) *RequestLogWriter {
	w := &RequestLogWriter{
		repo: repo,
		ch:   make(chan models.RequestLog, bufferSize),
		done: make(chan struct{}),
	}

	go w.run()
	return w
}

func (w *RequestLogWriter) run() {
	batch := make([]*models.RequestLog, 0, logBatchSize)
	ticker := time.NewTicker(logFlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := w.repo.CreateBatch(context.Background(), batch); err != nil {
			// Log error but dont block
			log.Printf("Failed to insert request logs: %v", err)
		}
		batch = make([]*models.RequestLog, 0, logBatchSize)
	}

	for {
		select {
		case entry, ok := <-w.ch:
			if !ok {
				flush()
				close(w.done)
				return
			}
			e := entry
			batch = append(batch, &e)

			// Insert when batch is full
			if len(batch) >= logBatchSize {
				flush()
			}
		case <-ticker.C:
			// Periodically insert remaining logs
			flush()
		}
	}
}

// Enqueue drops the entry when the buffer is full rather than blocking the
// request.
func (w *RequestLogWriter) Enqueue(entry models.RequestLog) {
	select {
	case w.ch <- entry:
	default:
		log.Printf("Request log buffer full, dropping entry")
	}
}

// Stop flushes the final batch. Call it only after the HTTP server has
// stopped accepting requests.
func (w *RequestLogWriter) Stop() {
	close(w.ch)
	<-w.done
}

// Records one row per request with its admission outcome
func RequestLogger(writer *RequestLogWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		duration := time.Since(start)

		entry := models.RequestLog{
			Timestamp:       start,
			IdentifierClass: c.GetString("admission_class"),
			Tier:            c.GetString("admission_tier"),
			Outcome:         c.GetString("admission_outcome"),
			Method:          c.Request.Method,
			Path:            c.Request.URL.Path,
			StatusCode:      c.Writer.Status(),
			ResponseTimeMs:  int(duration.Milliseconds()),
			IPAddress:       c.ClientIP(),
			UserAgent:       c.Request.UserAgent(),
		}

		writer.Enqueue(entry)
	}
}
