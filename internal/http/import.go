package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mustafahasanain/bookstock/internal/importer"
	"github.com/mustafahasanain/bookstock/internal/parser"
	"github.com/mustafahasanain/bookstock/internal/tasks"
)

// ImportController exposes the book import pipeline: validation,
// synchronous imports and queued import jobs.
type ImportController struct {
	importer   *importer.Importer
	runner     *importer.BatchRunner
	jobs       JobStore
	taskClient *tasks.Client
}

func NewImportController(imp *importer.Importer, runner *importer.BatchRunner, jobs JobStore, taskClient *tasks.Client) *ImportController {
	return &ImportController{
		importer:   imp,
		runner:     runner,
		jobs:       jobs,
		taskClient: taskClient,
	}
}

type importTextRequest struct {
	Text     string `json:"text" binding:"required"`
	Category string `json:"category"`
}

type importBooksRequest struct {
	Books    []importer.Request `json:"books" binding:"required"`
	Category string             `json:"category"`
}

// Validate checks pasted import text line by line and reports every
// malformed line without importing anything.
func (controller *ImportController) Validate(c *gin.Context) {
	var req importTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}

	report := parser.Validate(req.Text)
	lines := parser.Parse(req.Text)

	c.IndentedJSON(http.StatusOK, gin.H{
		"valid":       report.Valid,
		"errors":      report.Errors,
		"entry_count": len(lines),
		"entries":     lines,
	})
}

// ImportText runs a full text import synchronously and returns the batch
// summary. Large batches should use the jobs endpoint instead.
func (controller *ImportController) ImportText(c *gin.Context) {
	var req importTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}

	lines := parser.Parse(req.Text)
	if len(lines) == 0 {
		respondBadRequest(c, "no valid book entries found")
		return
	}

	summary, err := controller.runner.Run(c.Request.Context(), lines, req.Category, nil)
	if err != nil {
		respondInternalError(c, err, "import text")
		return
	}

	c.IndentedJSON(http.StatusOK, summary)
}

// ImportBooks imports already-searched book records, typically the rows an
// operator selected from search results.
func (controller *ImportController) ImportBooks(c *gin.Context) {
	var req importBooksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "books are required")
		return
	}
	if len(req.Books) == 0 {
		respondBadRequest(c, "books are required")
		return
	}

	results := make([]importer.Result, 0, len(req.Books))
	succeeded := 0
	for _, book := range req.Books {
		if book.Category == "" {
			book.Category = req.Category
		}
		result := controller.importer.Import(c.Request.Context(), book)
		if result.Success {
			succeeded++
		}
		results = append(results, result)
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"total":     len(results),
		"succeeded": succeeded,
		"results":   results,
	})
}

// CreateJob validates the import text, persists a pending job and enqueues
// it on the task queue. Returns 202 with the job ID for polling.
func (controller *ImportController) CreateJob(c *gin.Context) {
	if controller.taskClient == nil {
		respondBadRequest(c, "task queue is disabled, use the synchronous import endpoint")
		return
	}

	var req importTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}

	report := parser.Validate(req.Text)
	if !report.Valid {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "import text is invalid",
			Details: report.Errors,
		})
		return
	}

	job, err := controller.jobs.CreateJob(req.Text, req.Category)
	if err != nil {
		respondInternalError(c, err, "create import job")
		return
	}

	if _, err := controller.taskClient.Add(tasks.ImportBatchTask{JobID: job.ID}).Save(); err != nil {
		respondInternalError(c, err, "enqueue import job")
		return
	}

	respondAccepted(c, "import job queued", gin.H{"job_id": job.ID})
}

// GetJob returns the current state of an import job with its per-item
// results.
func (controller *ImportController) GetJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, err := controller.jobs.GetJob(id)
	if err != nil {
		respondNotFound(c, "import job")
		return
	}

	c.IndentedJSON(http.StatusOK, job)
}

// SampleFormat returns the expected input format for pasted import text.
func (controller *ImportController) SampleFormat(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{"sample": parser.SampleFormat()})
}
