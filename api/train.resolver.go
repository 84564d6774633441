package api

import (
	"errors"
	"fmt"
	"time"

	"formrank/internal/service"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) train(c *gin.Context) {
	type trainRequest struct {
		StartDate string `json:"startDate" binding:"required"`
		EndDate   string `json:"endDate" binding:"required"`
	}

	req := trainRequest{}
	err := c.ShouldBindJSON(&req)
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid request body: %w", err), c, 400)
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid startDate %q, expected YYYY-MM-DD", req.StartDate), c, 400)
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid endDate %q, expected YYYY-MM-DD", req.EndDate), c, 400)
		return
	}
	// make the end date inclusive of its whole race day
	end = end.Add(24*time.Hour - time.Second)

	artifact, err := m.TrainerService.Train(c.Request.Context(), start, end)
	if err != nil {
		insufficient := service.InsufficientDataError{}
		if errors.As(err, &insufficient) {
			returnErrorJsonCode(err, c, 422)
			return
		}
		returnErrorJson(fmt.Errorf("failed to train: %w", err), c)
		return
	}

	c.JSON(200, gin.H{
		"modelArtifactID":   artifact.ModelArtifactID,
		"featureSchemaHash": artifact.FeatureSchemaHash,
		"trainRaceCount":    artifact.TrainRaceCount,
		"metrics":           artifact.Metrics,
	})
}
