package repository

import (
	"database/sql"
	"fmt"
	"formrank/internal/db/models/postgres/public/model"
	"formrank/internal/domain"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements every repository interface against process memory.
// Tests and the FORMRANK_ENV=test wiring use it so nothing touches a real
// database. The *sql.Tx params are accepted and ignored; callers in test mode
// pass nil.
type MemoryStore struct {
	mu            sync.RWMutex
	races         map[string]model.Race
	runners       map[string]map[string]model.Runner
	results       map[string]map[string]model.RaceResult
	artifacts     []model.ModelArtifact
	featureScores map[string]model.FeatureScore
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		races:         map[string]model.Race{},
		runners:       map[string]map[string]model.Runner{},
		results:       map[string]map[string]model.RaceResult{},
		featureScores: map[string]model.FeatureScore{},
	}
}

var _ RaceRepository = (*MemoryStore)(nil)
var _ RunnerRepository = (*MemoryStore)(nil)
var _ ResultRepository = (*MemoryStore)(nil)
var _ RunnerHistoryRepository = (*MemoryStore)(nil)
var _ ModelArtifactRepository = (*MemoryStore)(nil)
var _ FeatureScoreRepository = (*MemoryStore)(nil)

func (s *MemoryStore) Upsert(tx *sql.Tx, race model.Race) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.races[race.RaceID]; ok {
		race.CreatedAt = existing.CreatedAt
	} else {
		race.CreatedAt = time.Now().UTC()
	}
	race.UpdatedAt = time.Now().UTC()
	s.races[race.RaceID] = race
	return nil
}

func (s *MemoryStore) Get(raceID string) (*model.Race, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	race, ok := s.races[raceID]
	if !ok {
		return nil, fmt.Errorf("race %s not found", raceID)
	}
	return &race, nil
}

func (s *MemoryStore) ListByPostTimeRange(start, end time.Time) ([]model.Race, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Race{}
	for _, race := range s.races {
		if !race.PostTime.Before(start) && !race.PostTime.After(end) {
			out = append(out, race)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PostTime.Equal(out[j].PostTime) {
			return out[i].RaceID < out[j].RaceID
		}
		return out[i].PostTime.Before(out[j].PostTime)
	})
	return out, nil
}

func (s *MemoryStore) UpsertMany(tx *sql.Tx, runners []model.Runner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, runner := range runners {
		if _, ok := s.runners[runner.RaceID]; !ok {
			s.runners[runner.RaceID] = map[string]model.Runner{}
		}
		if existing, ok := s.runners[runner.RaceID][runner.RunnerID]; ok {
			runner.CreatedAt = existing.CreatedAt
		} else {
			runner.CreatedAt = time.Now().UTC()
		}
		runner.UpdatedAt = time.Now().UTC()
		s.runners[runner.RaceID][runner.RunnerID] = runner
	}
	return nil
}

func (s *MemoryStore) ListByRace(raceID string) ([]model.Runner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Runner{}
	for _, runner := range s.runners[raceID] {
		out = append(out, runner)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProgramNumber < out[j].ProgramNumber
	})
	return out, nil
}

func (s *MemoryStore) Append(tx *sql.Tx, result model.RaceResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[result.RaceID]; !ok {
		s.results[result.RaceID] = map[string]model.RaceResult{}
	}
	if _, ok := s.results[result.RaceID][result.RunnerID]; ok {
		return DuplicateResultError{RaceID: result.RaceID, RunnerID: result.RunnerID}
	}
	result.CreatedAt = time.Now().UTC()
	s.results[result.RaceID][result.RunnerID] = result
	return nil
}

func (s *MemoryStore) ListForRace(raceID string) ([]model.RaceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.RaceResult{}
	for _, result := range s.results[raceID] {
		out = append(out, result)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RunnerID < out[j].RunnerID
	})
	return out, nil
}

func (s *MemoryStore) listStarts(match func(model.Runner) bool, before time.Time, limit int) ([]domain.RunnerStart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.RunnerStart{}
	for raceID, runners := range s.runners {
		race, ok := s.races[raceID]
		if !ok || !race.PostTime.Before(before) {
			continue
		}
		for _, runner := range runners {
			if !match(runner) {
				continue
			}
			start := domain.RunnerStart{
				RaceID:         runner.RaceID,
				RunnerID:       runner.RunnerID,
				HorseID:        runner.HorseID,
				JockeyID:       runner.JockeyID,
				TrainerID:      runner.TrainerID,
				PostTime:       race.PostTime,
				Track:          race.Track,
				Class:          race.Class,
				DistanceMeters: race.DistanceMeters,
				Draw:           runner.Draw,
				WeightKg:       runner.WeightKg,
			}
			if result, ok := s.results[raceID][runner.RunnerID]; ok {
				start.FinishPosition = result.FinishPosition
				start.FinishTimeSecs = result.FinishTimeSecs
				start.FinalOdds = result.FinalOdds
				start.Status = result.Status
			}
			out = append(out, start)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PostTime.Equal(out[j].PostTime) {
			return out[i].RunnerID < out[j].RunnerID
		}
		return out[i].PostTime.After(out[j].PostTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ListByHorse(horseID string, before time.Time, limit int) ([]domain.RunnerStart, error) {
	return s.listStarts(func(r model.Runner) bool {
		return r.HorseID == horseID
	}, before, limit)
}

func (s *MemoryStore) ListByJockey(jockeyID string, before time.Time, limit int) ([]domain.RunnerStart, error) {
	return s.listStarts(func(r model.Runner) bool {
		return r.JockeyID != nil && *r.JockeyID == jockeyID
	}, before, limit)
}

func (s *MemoryStore) ListByTrainer(trainerID string, before time.Time, limit int) ([]domain.RunnerStart, error) {
	return s.listStarts(func(r model.Runner) bool {
		return r.TrainerID != nil && *r.TrainerID == trainerID
	}, before, limit)
}

func (s *MemoryStore) ListByCombo(jockeyID, trainerID string, before time.Time, limit int) ([]domain.RunnerStart, error) {
	return s.listStarts(func(r model.Runner) bool {
		return r.JockeyID != nil && *r.JockeyID == jockeyID &&
			r.TrainerID != nil && *r.TrainerID == trainerID
	}, before, limit)
}

func (s *MemoryStore) Add(tx *sql.Tx, artifact model.ModelArtifact) (*model.ModelArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if artifact.ModelArtifactID == uuid.Nil {
		artifact.ModelArtifactID = uuid.New()
	}
	artifact.CreatedAt = time.Now().UTC()
	s.artifacts = append(s.artifacts, artifact)
	return &artifact, nil
}

func (s *MemoryStore) GetByID(id uuid.UUID) (*model.ModelArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.artifacts {
		if a.ModelArtifactID == id {
			return &a, nil
		}
	}
	return nil, ErrNoArtifact
}

func (s *MemoryStore) GetLatest() (*model.ModelArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.artifacts) == 0 {
		return nil, ErrNoArtifact
	}
	latest := s.artifacts[0]
	for _, a := range s.artifacts[1:] {
		if a.TrainedAt.After(latest.TrainedAt) {
			latest = a
		}
	}
	return &latest, nil
}

func featureScoreKey(raceID, runnerID string, asOf time.Time, schemaHash string) string {
	return fmt.Sprintf("%s|%s|%d|%s", raceID, runnerID, asOf.UnixNano(), schemaHash)
}

func (s *MemoryStore) GetManyForRace(raceID string, asOf time.Time, schemaHash string) (map[string]model.FeatureScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]model.FeatureScore{}
	for _, score := range s.featureScores {
		if score.RaceID == raceID && score.AsOf.Equal(asOf) && score.FeatureSchemaHash == schemaHash {
			out[score.RunnerID] = score
		}
	}
	return out, nil
}

func (s *MemoryStore) AddMany(scores []*model.FeatureScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, score := range scores {
		score.CreatedAt = time.Now().UTC()
		s.featureScores[featureScoreKey(score.RaceID, score.RunnerID, score.AsOf, score.FeatureSchemaHash)] = *score
	}
	return nil
}

func (s *MemoryStore) InvalidateHorses(tx *sql.Tx, horseIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := map[string]bool{}
	for _, id := range horseIDs {
		ids[id] = true
	}
	for key, score := range s.featureScores {
		if ids[score.HorseID] {
			delete(s.featureScores, key)
		}
	}
	return nil
}
