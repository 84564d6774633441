package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"formrank/internal/calculator"
	"formrank/internal/db/models/postgres/public/model"
	"formrank/internal/domain"
	"formrank/internal/logger"
	"formrank/internal/repository"
	"formrank/internal/util"

	"github.com/shopspring/decimal"
)

// LeakageViolationError means a feature computation touched a start whose
// post time is at or after the as-of bound. The bounded history query makes
// this unreachable; the guard exists so a future query change fails loudly
// instead of silently training on the future.
type LeakageViolationError struct {
	AsOf     time.Time
	PostTime time.Time
	RaceID   string
}

func (e LeakageViolationError) Error() string {
	return fmt.Sprintf(
		"feature computation as of %v read race %s with post time %v",
		e.AsOf, e.RaceID, e.PostTime,
	)
}

// FeatureService computes point-in-time feature vectors for every runner in
// a race. The same code path serves training and scoring; the only input
// that differs is the as-of bound.
type FeatureService interface {
	SchemaNames() []string
	SchemaHash() string
	ComputeRace(ctx context.Context, raceID string, asOf time.Time) ([]domain.FeatureVector, error)
}

type featureServiceHandler struct {
	RaceRepository         repository.RaceRepository
	RunnerRepository       repository.RunnerRepository
	FeatureScoreRepository repository.FeatureScoreRepository
	FormMetrics            calculator.FormMetricCalculations

	FormWindow  int
	Expressions map[string]string
	Priors      calculator.ExpressionPriors

	schemaNames []string
	schemaHash  string
}

func NewFeatureService(
	raceRepository repository.RaceRepository,
	runnerRepository repository.RunnerRepository,
	featureScoreRepository repository.FeatureScoreRepository,
	historyRepository repository.RunnerHistoryRepository,
	cfg util.FeaturesConfig,
) FeatureService {
	guarded := leakageGuard{HistoryRepository: historyRepository}
	h := &featureServiceHandler{
		RaceRepository:         raceRepository,
		RunnerRepository:       runnerRepository,
		FeatureScoreRepository: featureScoreRepository,
		FormMetrics:            calculator.NewFormMetricsHandler(guarded),
		FormWindow:             cfg.FormWindow,
		Expressions:            cfg.Expressions,
		Priors: calculator.ExpressionPriors{
			WinRate:     cfg.Priors.WinRate,
			PlaceRate:   cfg.Priors.PlaceRate,
			FinishPos:   cfg.Priors.FinishPos,
			SpeedRating: cfg.Priors.SpeedRating,
		},
	}
	h.schemaNames = h.buildSchemaNames()
	h.schemaHash = h.buildSchemaHash()
	return h
}

// baseFeatureNames is ordered; appending is schema-compatible only through a
// retrain, so order changes and insertions must never happen silently. The
// schema hash exists to catch exactly that.
var baseFeatureNames = []string{
	"distance_meters",
	"race_number",
	"field_size",
	"post_hour",
	"program_number",
	"draw",
	"draw_missing",
	"weight_kg",
	"weight_missing",
	"ml_implied_prob",
	"ml_odds_missing",
	"career_starts",
	"win_rate",
	"win_rate_missing",
	"place_rate",
	"place_rate_missing",
	"avg_finish",
	"avg_finish_missing",
	"days_since_last",
	"days_since_last_missing",
	"class_delta",
	"class_delta_missing",
	"combo_win_rate",
	"combo_win_rate_missing",
	"avg_speed",
	"avg_speed_missing",
	"best_speed",
	"best_speed_missing",
}

func (h *featureServiceHandler) buildSchemaNames() []string {
	names := make([]string, 0, len(baseFeatureNames)+len(h.Expressions))
	names = append(names, baseFeatureNames...)

	expressionNames := make([]string, 0, len(h.Expressions))
	for name := range h.Expressions {
		expressionNames = append(expressionNames, name)
	}
	sort.Strings(expressionNames)
	names = append(names, expressionNames...)

	return names
}

// buildSchemaHash pins the ordered feature names, the form window, the
// missing-value priors and every expression body. Any change to any of them
// produces a new hash, which orphans cached vectors and makes existing
// artifacts refuse to score. Priors are inputs to the feature values, so two
// vectors are only comparable when they were filled with the same priors.
func (h *featureServiceHandler) buildSchemaHash() string {
	parts := []string{
		strings.Join(h.schemaNames, ","),
		fmt.Sprintf("formWindow=%d", h.FormWindow),
		fmt.Sprintf(
			"priors=%v,%v,%v,%v",
			h.Priors.WinRate,
			h.Priors.PlaceRate,
			h.Priors.FinishPos,
			h.Priors.SpeedRating,
		),
	}
	expressionNames := make([]string, 0, len(h.Expressions))
	for name := range h.Expressions {
		expressionNames = append(expressionNames, name)
	}
	sort.Strings(expressionNames)
	for _, name := range expressionNames {
		parts = append(parts, name+"="+calculator.HashFeatureExpression(h.Expressions[name]))
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:32]
}

func (h *featureServiceHandler) SchemaNames() []string {
	out := make([]string, len(h.schemaNames))
	copy(out, h.schemaNames)
	return out
}

func (h *featureServiceHandler) SchemaHash() string {
	return h.schemaHash
}

func (h *featureServiceHandler) ComputeRace(ctx context.Context, raceID string, asOf time.Time) ([]domain.FeatureVector, error) {
	log := logger.FromContext(ctx)

	race, err := h.RaceRepository.Get(raceID)
	if err != nil {
		return nil, err
	}
	runners, err := h.RunnerRepository.ListByRace(raceID)
	if err != nil {
		return nil, err
	}
	if len(runners) == 0 {
		return nil, fmt.Errorf("race %s has no runners", raceID)
	}

	cached, err := h.FeatureScoreRepository.GetManyForRace(raceID, asOf, h.schemaHash)
	if err != nil {
		return nil, err
	}

	vectors := make([]domain.FeatureVector, 0, len(runners))
	newScores := []*model.FeatureScore{}
	for _, runner := range runners {
		if score, ok := cached[runner.RunnerID]; ok {
			vector, err := h.vectorFromCache(score, asOf)
			if err == nil {
				vectors = append(vectors, vector)
				continue
			}
			log.Warnf("discarding unusable cached features for runner %s: %v", runner.RunnerID, err)
		}

		vector, err := h.computeRunner(*race, runner, len(runners), asOf)
		if err != nil {
			return nil, fmt.Errorf("failed to compute features for runner %s in race %s: %w", runner.RunnerID, raceID, err)
		}
		vectors = append(vectors, vector)

		featuresJson, err := json.Marshal(vector.ToMap())
		if err != nil {
			return nil, err
		}
		newScores = append(newScores, &model.FeatureScore{
			RaceID:            raceID,
			RunnerID:          runner.RunnerID,
			AsOf:              asOf,
			FeatureSchemaHash: h.schemaHash,
			HorseID:           runner.HorseID,
			Features:          string(featuresJson),
		})
	}

	if len(newScores) > 0 {
		err = h.FeatureScoreRepository.AddMany(newScores)
		if err != nil {
			log.Warnf("failed to cache %d feature vectors for race %s: %v", len(newScores), raceID, err)
		}
	}

	return vectors, nil
}

func (h *featureServiceHandler) vectorFromCache(score model.FeatureScore, asOf time.Time) (domain.FeatureVector, error) {
	values := map[string]float64{}
	err := json.Unmarshal([]byte(score.Features), &values)
	if err != nil {
		return domain.FeatureVector{}, fmt.Errorf("failed to parse cached features: %w", err)
	}

	ordered := make([]float64, len(h.schemaNames))
	for i, name := range h.schemaNames {
		v, ok := values[name]
		if !ok {
			return domain.FeatureVector{}, fmt.Errorf("cached features missing %s", name)
		}
		ordered[i] = v
	}

	return domain.FeatureVector{
		RaceID:   score.RaceID,
		RunnerID: score.RunnerID,
		AsOf:     asOf,
		Names:    h.SchemaNames(),
		Values:   ordered,
	}, nil
}

func (h *featureServiceHandler) computeRunner(race model.Race, runner model.Runner, fieldSize int, asOf time.Time) (domain.FeatureVector, error) {
	values := map[string]float64{}

	values["distance_meters"] = race.DistanceMeters
	values["race_number"] = float64(race.RaceNumber)
	values["field_size"] = float64(fieldSize)
	values["post_hour"] = float64(race.PostTime.UTC().Hour())
	values["program_number"] = float64(runner.ProgramNumber)

	var drawFloat *float64
	if runner.Draw != nil {
		d := float64(*runner.Draw)
		drawFloat = &d
	}
	values["draw"], values["draw_missing"] = floatOrSentinel(drawFloat, float64(fieldSize)/2)
	values["weight_kg"], values["weight_missing"] = floatOrSentinel(runner.WeightKg, 55)
	values["ml_implied_prob"], values["ml_odds_missing"] = impliedProbability(runner.MorningLineOdds, fieldSize)

	careerStarts, err := h.FormMetrics.CareerStarts(runner.HorseID, asOf)
	if err != nil {
		return domain.FeatureVector{}, err
	}
	values["career_starts"] = careerStarts

	formValues := []struct {
		name    string
		prior   float64
		compute func() (float64, error)
	}{
		{"win_rate", h.Priors.WinRate, func() (float64, error) {
			return h.FormMetrics.WinRate(runner.HorseID, asOf, h.FormWindow)
		}},
		{"place_rate", h.Priors.PlaceRate, func() (float64, error) {
			return h.FormMetrics.PlaceRate(runner.HorseID, asOf, h.FormWindow)
		}},
		{"avg_finish", h.Priors.FinishPos, func() (float64, error) {
			return h.FormMetrics.AvgFinishPosition(runner.HorseID, asOf, h.FormWindow)
		}},
		{"days_since_last", 365, func() (float64, error) {
			return h.FormMetrics.DaysSinceLastStart(runner.HorseID, asOf)
		}},
		{"class_delta", 0, func() (float64, error) {
			return h.FormMetrics.ClassDelta(runner.HorseID, asOf, race.Class)
		}},
		{"combo_win_rate", h.Priors.WinRate, func() (float64, error) {
			if runner.JockeyID == nil || runner.TrainerID == nil {
				return 0, calculator.FormMetricsMissingDataError{Err: fmt.Errorf("runner %s has no jockey/trainer", runner.RunnerID)}
			}
			return h.FormMetrics.ComboWinRate(*runner.JockeyID, *runner.TrainerID, asOf, h.FormWindow)
		}},
		{"avg_speed", h.Priors.SpeedRating, func() (float64, error) {
			return h.FormMetrics.AvgSpeedRating(runner.HorseID, asOf, h.FormWindow)
		}},
		{"best_speed", h.Priors.SpeedRating, func() (float64, error) {
			return h.FormMetrics.BestSpeedRating(runner.HorseID, asOf, h.FormWindow)
		}},
	}
	for _, f := range formValues {
		v, err := f.compute()
		if err == nil {
			values[f.name] = v
			values[f.name+"_missing"] = 0
			continue
		}
		if !isMissingData(err) {
			return domain.FeatureVector{}, err
		}
		values[f.name] = f.prior
		values[f.name+"_missing"] = 1
	}

	runnerCtx := calculator.RunnerContext{
		HorseID:      runner.HorseID,
		JockeyID:     runner.JockeyID,
		TrainerID:    runner.TrainerID,
		CurrentClass: race.Class,
		AsOf:         asOf,
	}
	for name, expression := range h.Expressions {
		v, err := calculator.EvaluateFeatureExpression(expression, h.FormMetrics, runnerCtx, h.Priors)
		if err != nil {
			return domain.FeatureVector{}, fmt.Errorf("expression feature %s: %w", name, err)
		}
		values[name] = v
	}

	ordered := make([]float64, len(h.schemaNames))
	for i, name := range h.schemaNames {
		ordered[i] = values[name]
	}

	return domain.FeatureVector{
		RaceID:   race.RaceID,
		RunnerID: runner.RunnerID,
		AsOf:     asOf,
		Names:    h.SchemaNames(),
		Values:   ordered,
	}, nil
}

func isMissingData(err error) bool {
	target := calculator.FormMetricsMissingDataError{}
	return errors.As(err, &target)
}

func floatOrSentinel(v *float64, sentinel float64) (float64, float64) {
	if v == nil {
		return sentinel, 1
	}
	return *v, 0
}

// impliedProbability converts decimal odds into the market's win
// probability. Odds at or below 1.0 are treated as malformed.
func impliedProbability(odds *float64, fieldSize int) (float64, float64) {
	if odds == nil || *odds <= 1 {
		return 1 / float64(fieldSize), 1
	}
	p := decimal.NewFromInt(1).Div(decimal.NewFromFloat(*odds))
	return p.InexactFloat64(), 0
}

// leakageGuard wraps the bounded history queries and re-verifies the bound
// on every row that comes back.
type leakageGuard struct {
	HistoryRepository repository.RunnerHistoryRepository
}

func verifyBound(starts []domain.RunnerStart, before time.Time, err error) ([]domain.RunnerStart, error) {
	if err != nil {
		return nil, err
	}
	for _, s := range starts {
		if !s.PostTime.Before(before) {
			return nil, LeakageViolationError{AsOf: before, PostTime: s.PostTime, RaceID: s.RaceID}
		}
	}
	return starts, nil
}

func (g leakageGuard) ListByHorse(horseID string, before time.Time, limit int) ([]domain.RunnerStart, error) {
	starts, err := g.HistoryRepository.ListByHorse(horseID, before, limit)
	return verifyBound(starts, before, err)
}

func (g leakageGuard) ListByJockey(jockeyID string, before time.Time, limit int) ([]domain.RunnerStart, error) {
	starts, err := g.HistoryRepository.ListByJockey(jockeyID, before, limit)
	return verifyBound(starts, before, err)
}

func (g leakageGuard) ListByTrainer(trainerID string, before time.Time, limit int) ([]domain.RunnerStart, error) {
	starts, err := g.HistoryRepository.ListByTrainer(trainerID, before, limit)
	return verifyBound(starts, before, err)
}

func (g leakageGuard) ListByCombo(jockeyID, trainerID string, before time.Time, limit int) ([]domain.RunnerStart, error) {
	starts, err := g.HistoryRepository.ListByCombo(jockeyID, trainerID, before, limit)
	return verifyBound(starts, before, err)
}
