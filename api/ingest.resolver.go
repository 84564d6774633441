package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) ingest(c *gin.Context) {
	type ingestRequest struct {
		Date string `json:"date" binding:"required"`
	}

	req := ingestRequest{}
	err := c.ShouldBindJSON(&req)
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid request body: %w", err), c, 400)
		return
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid date %q, expected YYYY-MM-DD", req.Date), c, 400)
		return
	}

	summary, err := m.IngestHandler.IngestDay(c.Request.Context(), day)
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to ingest %s: %w", req.Date, err), c)
		return
	}

	c.JSON(200, summary)
}
