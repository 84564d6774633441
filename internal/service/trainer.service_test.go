package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"formrank/internal/repository"
	"formrank/internal/util"

	"github.com/stretchr/testify/require"
)

func testTrainerConfig() util.TrainerConfig {
	return util.TrainerConfig{
		MinSettledRaces: 5,
		Steps:           400,
		LearningRate:    0.1,
	}
}

// seedScenario builds `days` consecutive settled races from a small pool of
// horses. The f* horses always beat the s* horses with faster times, so a
// trained model has a real pattern to find.
func seedScenario(t *testing.T, store *repository.MemoryStore, days int) {
	t.Helper()
	base := util.NewDate(2026, 4, 1).Add(14 * time.Hour)
	for d := 0; d < days; d++ {
		fast := fmt.Sprintf("f%d", d%4)
		slow := fmt.Sprintf("s%d", d%4)
		raceID := fmt.Sprintf("sc-%d", d)
		// alternate the gate assignments so program and draw carry no signal
		fastProgram, slowProgram := int32(1), int32(2)
		if d%2 == 1 {
			fastProgram, slowProgram = 2, 1
		}
		seedRace(t, store, raceFixture{
			raceID:   raceID,
			postTime: base.AddDate(0, 0, d),
			class:    strPtr("Class 4"),
			runners: []runnerFixture{
				{
					runnerID: raceID + "-a", horseID: fast, program: fastProgram,
					jockeyID: strPtr("j-" + fast), trainerID: strPtr("t-" + fast),
					odds: floatPtr(2.5), draw: int32Ptr(fastProgram), weightKg: floatPtr(55),
					finishPos: int32Ptr(1), timeSecs: floatPtr(94),
				},
				{
					runnerID: raceID + "-b", horseID: slow, program: slowProgram,
					jockeyID: strPtr("j-" + slow), trainerID: strPtr("t-" + slow),
					odds: floatPtr(6), draw: int32Ptr(slowProgram), weightKg: floatPtr(55),
					finishPos: int32Ptr(2), timeSecs: floatPtr(100),
				},
			},
		})
	}
}

func newTestTrainer(store *repository.MemoryStore, featureService FeatureService) TrainerService {
	return NewTrainerService(store, store, store, store, featureService, testTrainerConfig())
}

func TestTrainerService(t *testing.T) {
	ctx := context.Background()
	window := func() (time.Time, time.Time) {
		return util.NewDate(2026, 4, 1), util.NewDate(2026, 6, 1)
	}

	t.Run("too few settled races", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedScenario(t, store, 3)
		trainer := newTestTrainer(store, newTestFeatureService(store, testFeaturesConfig()))

		start, end := window()
		_, err := trainer.Train(ctx, start, end)
		insufficient := InsufficientDataError{}
		require.ErrorAs(t, err, &insufficient)
		require.Equal(t, 3, insufficient.SettledRaces)
		require.Equal(t, 5, insufficient.Required)
	})

	t.Run("trains and persists an artifact", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedScenario(t, store, 12)
		featureService := newTestFeatureService(store, testFeaturesConfig())
		trainer := newTestTrainer(store, featureService)

		start, end := window()
		artifact, err := trainer.Train(ctx, start, end)
		require.NoError(t, err)
		require.Equal(t, featureService.SchemaHash(), artifact.FeatureSchemaHash)
		require.Equal(t, int32(12), artifact.TrainRaceCount)

		names := []string{}
		require.NoError(t, json.Unmarshal([]byte(artifact.FeatureNames), &names))
		require.Equal(t, featureService.SchemaNames(), names)

		params := modelParams{}
		require.NoError(t, json.Unmarshal([]byte(artifact.Params), &params))
		require.Len(t, params.Weights, len(names))
		require.Len(t, params.Means, len(names))
		require.Len(t, params.Stds, len(names))

		require.NotNil(t, artifact.Metrics)
		metrics := trainMetrics{}
		require.NoError(t, json.Unmarshal([]byte(*artifact.Metrics), &metrics))
		require.Equal(t, 11, metrics.TrainRaces)
		require.Equal(t, 1, metrics.HoldoutRaces)
		require.Equal(t, 2, metrics.HoldoutRows)

		stored, err := store.GetLatest()
		require.NoError(t, err)
		require.Equal(t, artifact.ModelArtifactID, stored.ModelArtifactID)
	})

	t.Run("unsettled races are excluded", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedScenario(t, store, 8)
		// upcoming race with no results yet
		seedRace(t, store, raceFixture{
			raceID:   "pending",
			postTime: util.NewDate(2026, 5, 20),
			class:    strPtr("Class 4"),
			runners: []runnerFixture{
				{runnerID: "pending-a", horseID: "f0", program: 1},
				{runnerID: "pending-b", horseID: "s0", program: 2},
			},
		})
		trainer := newTestTrainer(store, newTestFeatureService(store, testFeaturesConfig()))

		start, end := window()
		artifact, err := trainer.Train(ctx, start, end)
		require.NoError(t, err)
		require.Equal(t, int32(8), artifact.TrainRaceCount)
	})

	t.Run("non finishers are dropped from the matrix but not the race", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedScenario(t, store, 6)
		raceID := "sc-dnf"
		seedRace(t, store, raceFixture{
			raceID:   raceID,
			postTime: util.NewDate(2026, 5, 18).Add(14 * time.Hour),
			class:    strPtr("Class 4"),
			runners: []runnerFixture{
				{runnerID: raceID + "-a", horseID: "f0", program: 1, finishPos: int32Ptr(1), timeSecs: floatPtr(95)},
				{runnerID: raceID + "-b", horseID: "s0", program: 2, finishPos: int32Ptr(2), timeSecs: floatPtr(99)},
				{runnerID: raceID + "-c", horseID: "s1", program: 3, status: "dnf"},
			},
		})
		trainer := newTestTrainer(store, newTestFeatureService(store, testFeaturesConfig()))

		start, end := window()
		artifact, err := trainer.Train(ctx, start, end)
		require.NoError(t, err)
		require.Equal(t, int32(7), artifact.TrainRaceCount)
	})
}
