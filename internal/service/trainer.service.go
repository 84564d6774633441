package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"formrank/internal/calculator"
	"formrank/internal/db/models/postgres/public/model"
	"formrank/internal/logger"
	"formrank/internal/repository"
	"formrank/internal/util"

	"github.com/montanaflynn/stats"
)

type InsufficientDataError struct {
	SettledRaces int
	Required     int
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("found %d settled races in window, need at least %d", e.SettledRaces, e.Required)
}

// modelParams is the JSON payload pinned inside a model artifact. The
// standardization constants are computed on the training matrix and replayed
// verbatim at scoring time; a scorer must never re-derive them.
type modelParams struct {
	Intercept float64   `json:"intercept"`
	Weights   []float64 `json:"weights"`
	Means     []float64 `json:"means"`
	Stds      []float64 `json:"stds"`
}

type trainMetrics struct {
	TrainRaces   int      `json:"trainRaces"`
	HoldoutRaces int      `json:"holdoutRaces"`
	HoldoutRows  int      `json:"holdoutRows"`
	LogLoss      float64  `json:"logLoss"`
	RocAuc       *float64 `json:"rocAuc,omitempty"`
}

type TrainerService interface {
	Train(ctx context.Context, start, end time.Time) (*model.ModelArtifact, error)
}

type trainerServiceHandler struct {
	RaceRepository          repository.RaceRepository
	RunnerRepository        repository.RunnerRepository
	ResultRepository        repository.ResultRepository
	ModelArtifactRepository repository.ModelArtifactRepository
	FeatureService          FeatureService

	MinSettledRaces int
	Steps           int
	LearningRate    float64
}

func NewTrainerService(
	raceRepository repository.RaceRepository,
	runnerRepository repository.RunnerRepository,
	resultRepository repository.ResultRepository,
	modelArtifactRepository repository.ModelArtifactRepository,
	featureService FeatureService,
	cfg util.TrainerConfig,
) TrainerService {
	return trainerServiceHandler{
		RaceRepository:          raceRepository,
		RunnerRepository:        runnerRepository,
		ResultRepository:        resultRepository,
		ModelArtifactRepository: modelArtifactRepository,
		FeatureService:          featureService,
		MinSettledRaces:         cfg.MinSettledRaces,
		Steps:                   cfg.Steps,
		LearningRate:            cfg.LearningRate,
	}
}

type labeledRace struct {
	race model.Race
	x    [][]float64
	y    []int
}

// Train fits a win model on the settled races in [start, end]. Each race's
// features are computed as of its own post time, so the matrix for a race
// only ever sees starts run strictly before it. Rows for runners that did
// not finish are dropped; the race itself still trains the rest of its
// field.
func (h trainerServiceHandler) Train(ctx context.Context, start, end time.Time) (*model.ModelArtifact, error) {
	log := logger.FromContext(ctx)

	races, err := h.RaceRepository.ListByPostTimeRange(start, end)
	if err != nil {
		return nil, err
	}

	labeled := []labeledRace{}
	for _, race := range races {
		lr, settled, err := h.labelRace(ctx, race)
		if err != nil {
			return nil, fmt.Errorf("failed to build training rows for race %s: %w", race.RaceID, err)
		}
		if !settled {
			continue
		}
		labeled = append(labeled, lr)
	}

	if len(labeled) < h.MinSettledRaces {
		return nil, InsufficientDataError{SettledRaces: len(labeled), Required: h.MinSettledRaces}
	}

	trainRaces, holdoutRaces := splitByLatestRaceDay(labeled)
	log.Infof("training on %d races, holding out %d from the latest race day", len(trainRaces), len(holdoutRaces))

	trainX, trainY := flatten(trainRaces)
	means, stds := columnStats(trainX)
	standardize(trainX, means, stds)

	fitted, err := calculator.FitLogistic(trainX, trainY, h.Steps, h.LearningRate)
	if err != nil {
		return nil, fmt.Errorf("failed to fit model: %w", err)
	}

	metrics, err := h.evaluateHoldout(fitted, holdoutRaces, means, stds)
	if err != nil {
		return nil, err
	}
	metrics.TrainRaces = len(trainRaces)
	metrics.HoldoutRaces = len(holdoutRaces)

	params, err := json.Marshal(modelParams{
		Intercept: fitted.Intercept,
		Weights:   fitted.Weights,
		Means:     means,
		Stds:      stds,
	})
	if err != nil {
		return nil, err
	}
	featureNames, err := json.Marshal(h.FeatureService.SchemaNames())
	if err != nil {
		return nil, err
	}
	metricsJson, err := json.Marshal(metrics)
	if err != nil {
		return nil, err
	}
	metricsStr := string(metricsJson)

	artifact, err := h.ModelArtifactRepository.Add(nil, model.ModelArtifact{
		TrainedAt:         time.Now().UTC(),
		FeatureSchemaHash: h.FeatureService.SchemaHash(),
		FeatureNames:      string(featureNames),
		Params:            string(params),
		TrainRaceCount:    int32(len(labeled)),
		Metrics:           &metricsStr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist model artifact: %w", err)
	}

	log.Infof("trained artifact %s on %d races (holdout log loss %.4f)", artifact.ModelArtifactID, len(labeled), metrics.LogLoss)
	return artifact, nil
}

// labelRace returns the feature rows and win labels for one race. A race is
// settled when every runner has a result row; until then it contributes
// nothing.
func (h trainerServiceHandler) labelRace(ctx context.Context, race model.Race) (labeledRace, bool, error) {
	runners, err := h.RunnerRepository.ListByRace(race.RaceID)
	if err != nil {
		return labeledRace{}, false, err
	}
	results, err := h.ResultRepository.ListForRace(race.RaceID)
	if err != nil {
		return labeledRace{}, false, err
	}
	if len(runners) == 0 || len(results) < len(runners) {
		return labeledRace{}, false, nil
	}

	resultByRunner := map[string]model.RaceResult{}
	for _, r := range results {
		resultByRunner[r.RunnerID] = r
	}

	vectors, err := h.FeatureService.ComputeRace(ctx, race.RaceID, race.PostTime)
	if err != nil {
		return labeledRace{}, false, err
	}

	lr := labeledRace{race: race}
	for _, v := range vectors {
		result, ok := resultByRunner[v.RunnerID]
		if !ok {
			return labeledRace{}, false, nil
		}
		if result.FinishPosition == nil || *result.FinishPosition < 1 {
			continue
		}
		label := 0
		if *result.FinishPosition == 1 {
			label = 1
		}
		lr.x = append(lr.x, v.Values)
		lr.y = append(lr.y, label)
	}
	if len(lr.x) == 0 {
		return labeledRace{}, false, nil
	}

	return lr, true, nil
}

func (h trainerServiceHandler) evaluateHoldout(fitted *calculator.LogisticModel, holdout []labeledRace, means, stds []float64) (trainMetrics, error) {
	x, y := flatten(holdout)
	standardize(x, means, stds)

	probs := make([]float64, len(x))
	for i, row := range x {
		p, err := fitted.Predict(row)
		if err != nil {
			return trainMetrics{}, err
		}
		probs[i] = p
	}

	metrics := trainMetrics{
		HoldoutRows: len(x),
		LogLoss:     calculator.LogLoss(y, probs),
	}
	auc, err := calculator.RocAuc(y, probs)
	if err == nil {
		metrics.RocAuc = &auc
	}
	return metrics, nil
}

// splitByLatestRaceDay holds out every race run on the most recent race day
// in the window, so evaluation never shares a day with training.
func splitByLatestRaceDay(labeled []labeledRace) (train, holdout []labeledRace) {
	var latest time.Time
	for _, lr := range labeled {
		if lr.race.PostTime.After(latest) {
			latest = lr.race.PostTime
		}
	}
	for _, lr := range labeled {
		if util.SameRaceDay(lr.race.PostTime, latest) {
			holdout = append(holdout, lr)
		} else {
			train = append(train, lr)
		}
	}
	if len(train) == 0 {
		return holdout, nil
	}
	return train, holdout
}

func flatten(labeled []labeledRace) ([][]float64, []int) {
	x := [][]float64{}
	y := []int{}
	for _, lr := range labeled {
		x = append(x, lr.x...)
		y = append(y, lr.y...)
	}
	return x, y
}

func columnStats(x [][]float64) (means, stds []float64) {
	if len(x) == 0 {
		return nil, nil
	}
	cols := len(x[0])
	means = make([]float64, cols)
	stds = make([]float64, cols)
	column := make([]float64, len(x))
	for j := 0; j < cols; j++ {
		for i := range x {
			column[i] = x[i][j]
		}
		mean, _ := stats.Mean(column)
		std, _ := stats.StandardDeviation(column)
		if std == 0 {
			std = 1
		}
		means[j] = mean
		stds[j] = std
	}
	return means, stds
}

func standardize(x [][]float64, means, stds []float64) {
	for i := range x {
		for j := range x[i] {
			x[i][j] = (x[i][j] - means[j]) / stds[j]
		}
	}
}
