package api

import (
	"bytes"
	"errors"
	"fmt"

	"formrank/internal/repository"
	"formrank/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (m ApiHandler) score(c *gin.Context) {
	type scoreRequest struct {
		RaceID     string  `json:"raceID" binding:"required"`
		ArtifactID *string `json:"artifactID"`
	}

	req := scoreRequest{}
	err := c.ShouldBindJSON(&req)
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid request body: %w", err), c, 400)
		return
	}

	var artifactID *uuid.UUID
	if req.ArtifactID != nil {
		parsed, err := uuid.Parse(*req.ArtifactID)
		if err != nil {
			returnErrorJsonCode(fmt.Errorf("invalid artifactID %q", *req.ArtifactID), c, 400)
			return
		}
		artifactID = &parsed
	}

	picks, err := m.ScorerService.Score(c.Request.Context(), req.RaceID, artifactID)
	if err != nil {
		mismatch := service.SchemaMismatchError{}
		if errors.As(err, &mismatch) {
			returnErrorJsonCode(err, c, 409)
			return
		}
		if errors.Is(err, repository.ErrNoArtifact) {
			returnErrorJsonCode(err, c, 422)
			return
		}
		returnErrorJson(fmt.Errorf("failed to score race %s: %w", req.RaceID, err), c)
		return
	}

	c.JSON(200, gin.H{"picks": picks})
}

func (m ApiHandler) picksCsv(c *gin.Context) {
	raceID := c.Query("raceID")
	if raceID == "" {
		returnErrorJsonCode(fmt.Errorf("raceID query param is required"), c, 400)
		return
	}

	picks, err := m.ScorerService.Score(c.Request.Context(), raceID, nil)
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to score race %s: %w", raceID, err), c)
		return
	}

	buf := bytes.Buffer{}
	err = service.WritePicksCSV(&buf, picks)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-picks.csv", raceID))
	c.Data(200, "text/csv", buf.Bytes())
}
