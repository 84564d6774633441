package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"formrank/internal/calculator"
	"formrank/internal/db/models/postgres/public/model"
	"formrank/internal/domain"
	"formrank/internal/logger"
	"formrank/internal/repository"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
)

// SchemaMismatchError means the requested artifact was trained against a
// different feature schema than the one this process computes. Scoring with
// mismatched schemas would silently feed features into the wrong weights, so
// the scorer refuses instead.
type SchemaMismatchError struct {
	ArtifactID   uuid.UUID
	ArtifactHash string
	CurrentHash  string
}

func (e SchemaMismatchError) Error() string {
	return fmt.Sprintf(
		"artifact %s was trained on feature schema %s but this process computes %s; retrain before scoring",
		e.ArtifactID, e.ArtifactHash, e.CurrentHash,
	)
}

type ScorerService interface {
	Score(ctx context.Context, raceID string, artifactID *uuid.UUID) ([]domain.Pick, error)
}

type scorerServiceHandler struct {
	RaceRepository          repository.RaceRepository
	RunnerRepository        repository.RunnerRepository
	ModelArtifactRepository repository.ModelArtifactRepository
	FeatureService          FeatureService

	now func() time.Time
}

func NewScorerService(
	raceRepository repository.RaceRepository,
	runnerRepository repository.RunnerRepository,
	modelArtifactRepository repository.ModelArtifactRepository,
	featureService FeatureService,
) ScorerService {
	return scorerServiceHandler{
		RaceRepository:          raceRepository,
		RunnerRepository:        runnerRepository,
		ModelArtifactRepository: modelArtifactRepository,
		FeatureService:          featureService,
		now:                     func() time.Time { return time.Now().UTC() },
	}
}

// Score ranks a race's runners by win probability under the given artifact,
// or the latest artifact when none is given. The as-of bound is the current
// time, capped at the race's post time so a retrospective run never sees the
// race's own result.
func (h scorerServiceHandler) Score(ctx context.Context, raceID string, artifactID *uuid.UUID) ([]domain.Pick, error) {
	log := logger.FromContext(ctx)

	artifact, err := h.resolveArtifact(artifactID)
	if err != nil {
		return nil, err
	}
	if err := h.checkSchema(artifact); err != nil {
		return nil, err
	}

	race, err := h.RaceRepository.Get(raceID)
	if err != nil {
		return nil, err
	}
	asOf := h.now()
	if race.PostTime.Before(asOf) {
		asOf = race.PostTime
	}

	runners, err := h.RunnerRepository.ListByRace(raceID)
	if err != nil {
		return nil, err
	}
	programNumbers := map[string]int32{}
	for _, r := range runners {
		programNumbers[r.RunnerID] = r.ProgramNumber
	}

	vectors, err := h.FeatureService.ComputeRace(ctx, raceID, asOf)
	if err != nil {
		return nil, err
	}

	params := modelParams{}
	err = json.Unmarshal([]byte(artifact.Params), &params)
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s params: %w", artifact.ModelArtifactID, err)
	}
	fitted := calculator.LogisticModel{Weights: params.Weights, Intercept: params.Intercept}

	picks := make([]domain.Pick, 0, len(vectors))
	for _, v := range vectors {
		row := make([]float64, len(v.Values))
		for j, value := range v.Values {
			row[j] = (value - params.Means[j]) / params.Stds[j]
		}
		p, err := fitted.Predict(row)
		if err != nil {
			return nil, err
		}
		picks = append(picks, domain.Pick{
			RaceID:        raceID,
			RunnerID:      v.RunnerID,
			ProgramNumber: programNumbers[v.RunnerID],
			Score:         p,
		})
	}

	rankPicks(picks)
	log.Infof("scored race %s as of %v with artifact %s", raceID, asOf, artifact.ModelArtifactID)
	return picks, nil
}

func (h scorerServiceHandler) resolveArtifact(artifactID *uuid.UUID) (*model.ModelArtifact, error) {
	if artifactID == nil {
		return h.ModelArtifactRepository.GetLatest()
	}
	return h.ModelArtifactRepository.GetByID(*artifactID)
}

func (h scorerServiceHandler) checkSchema(artifact *model.ModelArtifact) error {
	mismatch := SchemaMismatchError{
		ArtifactID:   artifact.ModelArtifactID,
		ArtifactHash: artifact.FeatureSchemaHash,
		CurrentHash:  h.FeatureService.SchemaHash(),
	}
	if artifact.FeatureSchemaHash != h.FeatureService.SchemaHash() {
		return mismatch
	}

	artifactNames := []string{}
	err := json.Unmarshal([]byte(artifact.FeatureNames), &artifactNames)
	if err != nil {
		return fmt.Errorf("failed to parse artifact %s feature names: %w", artifact.ModelArtifactID, err)
	}
	currentNames := h.FeatureService.SchemaNames()
	if len(artifactNames) != len(currentNames) {
		return mismatch
	}
	for i := range artifactNames {
		if artifactNames[i] != currentNames[i] {
			return mismatch
		}
	}

	return nil
}

// rankPicks orders by descending score, breaking exact ties on ascending
// program number so reruns print identical sheets.
func rankPicks(picks []domain.Pick) {
	sort.SliceStable(picks, func(i, j int) bool {
		if picks[i].Score != picks[j].Score {
			return picks[i].Score > picks[j].Score
		}
		return picks[i].ProgramNumber < picks[j].ProgramNumber
	})
	for i := range picks {
		picks[i].Rank = i + 1
	}
}

func WritePicksCSV(w io.Writer, picks []domain.Pick) error {
	err := gocsv.Marshal(picks, w)
	if err != nil {
		return fmt.Errorf("failed to write picks csv: %w", err)
	}
	return nil
}
