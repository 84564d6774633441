package service

import (
	"context"
	"testing"
	"time"

	"formrank/internal/db/models/postgres/public/model"
	"formrank/internal/domain"
	"formrank/internal/repository"
	"formrank/internal/util"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func int32Ptr(i int32) *int32 {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}

func strPtr(s string) *string {
	return &s
}

func testFeaturesConfig() util.FeaturesConfig {
	return util.FeaturesConfig{
		FormWindow:  5,
		Expressions: map[string]string{},
		Priors: util.PriorsConfig{
			WinRate:     0.08,
			PlaceRate:   0.25,
			FinishPos:   5.5,
			SpeedRating: 50,
		},
	}
}

func newTestFeatureService(store *repository.MemoryStore, cfg util.FeaturesConfig) FeatureService {
	return NewFeatureService(store, store, store, store, cfg)
}

type raceFixture struct {
	raceID   string
	postTime time.Time
	class    *string
	runners  []runnerFixture
}

type runnerFixture struct {
	runnerID  string
	horseID   string
	program   int32
	draw      *int32
	weightKg  *float64
	odds      *float64
	jockeyID  *string
	trainerID *string
	finishPos *int32
	timeSecs  *float64
	status    string
}

func seedRace(t *testing.T, store *repository.MemoryStore, f raceFixture) {
	t.Helper()
	err := store.Upsert(nil, model.Race{
		RaceID:         f.raceID,
		Track:          "Del Mar",
		RaceDate:       f.postTime.Truncate(24 * time.Hour),
		PostTime:       f.postTime,
		RaceNumber:     1,
		DistanceMeters: 1600,
		Class:          f.class,
	})
	require.NoError(t, err)

	runners := []model.Runner{}
	for _, r := range f.runners {
		runners = append(runners, model.Runner{
			RaceID:          f.raceID,
			RunnerID:        r.runnerID,
			HorseID:         r.horseID,
			JockeyID:        r.jockeyID,
			TrainerID:       r.trainerID,
			ProgramNumber:   r.program,
			Draw:            r.draw,
			WeightKg:        r.weightKg,
			MorningLineOdds: r.odds,
		})
	}
	require.NoError(t, store.UpsertMany(nil, runners))

	for _, r := range f.runners {
		if r.finishPos == nil && r.status == "" {
			continue
		}
		status := r.status
		if status == "" {
			status = "finished"
		}
		err := store.Append(nil, model.RaceResult{
			RaceID:         f.raceID,
			RunnerID:       r.runnerID,
			FinishPosition: r.finishPos,
			FinishTimeSecs: r.timeSecs,
			Status:         status,
		})
		require.NoError(t, err)
	}
}

func TestFeatureServiceSchema(t *testing.T) {
	store := repository.NewMemoryStore()

	t.Run("names are stable and ordered", func(t *testing.T) {
		svc := newTestFeatureService(store, testFeaturesConfig())
		require.Equal(t, "", cmp.Diff(svc.SchemaNames(), svc.SchemaNames()))
		require.Equal(t, svc.SchemaHash(), svc.SchemaHash())
	})

	t.Run("expression names sort into the schema tail", func(t *testing.T) {
		cfg := testFeaturesConfig()
		cfg.Expressions = map[string]string{
			"zz_blend": "winRate(5)",
			"aa_blend": "placeRate(5)",
		}
		svc := newTestFeatureService(store, cfg)
		names := svc.SchemaNames()
		require.Equal(t, "aa_blend", names[len(names)-2])
		require.Equal(t, "zz_blend", names[len(names)-1])
	})

	t.Run("hash changes with expressions and form window", func(t *testing.T) {
		base := newTestFeatureService(store, testFeaturesConfig())

		widened := testFeaturesConfig()
		widened.FormWindow = 20
		require.NotEqual(t, base.SchemaHash(), newTestFeatureService(store, widened).SchemaHash())

		withExpr := testFeaturesConfig()
		withExpr.Expressions = map[string]string{"blend": "winRate(5)"}
		withExprSvc := newTestFeatureService(store, withExpr)
		require.NotEqual(t, base.SchemaHash(), withExprSvc.SchemaHash())

		editedExpr := testFeaturesConfig()
		editedExpr.Expressions = map[string]string{"blend": "winRate(20)"}
		require.NotEqual(t, withExprSvc.SchemaHash(), newTestFeatureService(store, editedExpr).SchemaHash())
	})

	// Priors fill in missing-history values, so vectors built under different
	// priors are not comparable and must not share a hash.
	t.Run("hash changes with priors", func(t *testing.T) {
		base := newTestFeatureService(store, testFeaturesConfig())

		shifted := testFeaturesConfig()
		shifted.Priors.WinRate = 0.12
		shiftedSvc := newTestFeatureService(store, shifted)
		require.NotEqual(t, base.SchemaHash(), shiftedSvc.SchemaHash())
		require.Equal(t, "", cmp.Diff(base.SchemaNames(), shiftedSvc.SchemaNames()))
	})
}

func TestFeatureServiceComputeRace(t *testing.T) {
	ctx := context.Background()

	t.Run("first time starters get priors and missing flags", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedRace(t, store, raceFixture{
			raceID:   "r1",
			postTime: util.NewDate(2026, 6, 1),
			class:    strPtr("Class 4"),
			runners: []runnerFixture{
				{runnerID: "a", horseID: "h1", program: 1, draw: int32Ptr(2), weightKg: floatPtr(55), odds: floatPtr(4)},
				{runnerID: "b", horseID: "h2", program: 2},
			},
		})
		svc := newTestFeatureService(store, testFeaturesConfig())

		vectors, err := svc.ComputeRace(ctx, "r1", util.NewDate(2026, 6, 1))
		require.NoError(t, err)
		require.Len(t, vectors, 2)
		require.Equal(t, "a", vectors[0].RunnerID)
		require.Equal(t, "b", vectors[1].RunnerID)

		a := vectors[0].ToMap()
		require.Equal(t, 0.25, a["ml_implied_prob"])
		require.Equal(t, float64(0), a["ml_odds_missing"])
		require.Equal(t, float64(0), a["career_starts"])
		require.Equal(t, 0.08, a["win_rate"])
		require.Equal(t, float64(1), a["win_rate_missing"])

		b := vectors[1].ToMap()
		require.Equal(t, float64(1), b["ml_odds_missing"])
		require.Equal(t, 0.5, b["ml_implied_prob"])
		require.Equal(t, float64(1), b["draw_missing"])
		require.Equal(t, float64(1), b["draw"])
	})

	t.Run("history before the bound flows into form features", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedRace(t, store, raceFixture{
			raceID:   "past",
			postTime: util.NewDate(2026, 5, 1),
			class:    strPtr("Class 4"),
			runners: []runnerFixture{
				{runnerID: "p-a", horseID: "h1", program: 1, finishPos: int32Ptr(1), timeSecs: floatPtr(96)},
				{runnerID: "p-b", horseID: "h2", program: 2, finishPos: int32Ptr(2), timeSecs: floatPtr(97)},
			},
		})
		seedRace(t, store, raceFixture{
			raceID:   "today",
			postTime: util.NewDate(2026, 6, 1),
			class:    strPtr("Class 4"),
			runners: []runnerFixture{
				{runnerID: "t-a", horseID: "h1", program: 1},
				{runnerID: "t-b", horseID: "h2", program: 2},
			},
		})
		svc := newTestFeatureService(store, testFeaturesConfig())

		vectors, err := svc.ComputeRace(ctx, "today", util.NewDate(2026, 6, 1))
		require.NoError(t, err)

		winner := vectors[0].ToMap()
		require.Equal(t, float64(1), winner["win_rate"])
		require.Equal(t, float64(0), winner["win_rate_missing"])
		require.Equal(t, float64(1), winner["career_starts"])
		require.Equal(t, float64(31), winner["days_since_last"])
	})

	t.Run("results at or after the bound never leak in", func(t *testing.T) {
		store := repository.NewMemoryStore()
		// h1 wins a race later the same afternoon
		seedRace(t, store, raceFixture{
			raceID:   "later",
			postTime: util.NewDate(2026, 6, 1).Add(16 * time.Hour),
			class:    strPtr("Class 4"),
			runners: []runnerFixture{
				{runnerID: "l-a", horseID: "h1", program: 1, finishPos: int32Ptr(1), timeSecs: floatPtr(95)},
			},
		})
		seedRace(t, store, raceFixture{
			raceID:   "now",
			postTime: util.NewDate(2026, 6, 1).Add(14 * time.Hour),
			class:    strPtr("Class 4"),
			runners: []runnerFixture{
				{runnerID: "n-a", horseID: "h1", program: 1},
			},
		})
		svc := newTestFeatureService(store, testFeaturesConfig())

		vectors, err := svc.ComputeRace(ctx, "now", util.NewDate(2026, 6, 1).Add(14*time.Hour))
		require.NoError(t, err)

		v := vectors[0].ToMap()
		require.Equal(t, float64(0), v["career_starts"])
		require.Equal(t, float64(1), v["win_rate_missing"])
	})

	t.Run("second compute is served from the cache", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedRace(t, store, raceFixture{
			raceID:   "r1",
			postTime: util.NewDate(2026, 6, 1),
			class:    strPtr("Class 4"),
			runners: []runnerFixture{
				{runnerID: "a", horseID: "h1", program: 1},
			},
		})
		svc := newTestFeatureService(store, testFeaturesConfig())
		asOf := util.NewDate(2026, 6, 1)

		first, err := svc.ComputeRace(ctx, "r1", asOf)
		require.NoError(t, err)

		cached, err := store.GetManyForRace("r1", asOf, svc.SchemaHash())
		require.NoError(t, err)
		require.Len(t, cached, 1)

		second, err := svc.ComputeRace(ctx, "r1", asOf)
		require.NoError(t, err)
		require.Equal(t, "", cmp.Diff(first, second))
	})

	t.Run("unknown race errors", func(t *testing.T) {
		store := repository.NewMemoryStore()
		svc := newTestFeatureService(store, testFeaturesConfig())
		_, err := svc.ComputeRace(ctx, "missing", util.NewDate(2026, 6, 1))
		require.Error(t, err)
	})
}

// brokenHistory simulates a history query that ignores its bound.
type brokenHistory struct {
	repository.RunnerHistoryRepository
}

func (b brokenHistory) ListByHorse(horseID string, before time.Time, limit int) ([]domain.RunnerStart, error) {
	return []domain.RunnerStart{{
		RaceID:   "future",
		RunnerID: "x",
		HorseID:  horseID,
		PostTime: before.Add(time.Hour),
	}}, nil
}

func TestLeakageGuard(t *testing.T) {
	store := repository.NewMemoryStore()
	seedRace(t, store, raceFixture{
		raceID:   "r1",
		postTime: util.NewDate(2026, 6, 1),
		class:    strPtr("Class 4"),
		runners: []runnerFixture{
			{runnerID: "a", horseID: "h1", program: 1},
		},
	})

	svc := NewFeatureService(store, store, store, brokenHistory{store}, testFeaturesConfig())

	_, err := svc.ComputeRace(context.Background(), "r1", util.NewDate(2026, 6, 1))
	require.Error(t, err)
	violation := LeakageViolationError{}
	require.ErrorAs(t, err, &violation)
	require.Equal(t, "future", violation.RaceID)
}
