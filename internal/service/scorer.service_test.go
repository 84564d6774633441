package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"formrank/internal/domain"
	"formrank/internal/repository"
	"formrank/internal/util"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestScorerService(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks a proven horse above an unproven field", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedScenario(t, store, 16)
		featureService := newTestFeatureService(store, testFeaturesConfig())
		trainer := newTestTrainer(store, featureService)
		_, err := trainer.Train(ctx, util.NewDate(2026, 4, 1), util.NewDate(2026, 6, 1))
		require.NoError(t, err)

		// the fast horse draws the outside program this time
		seedRace(t, store, raceFixture{
			raceID:   "target",
			postTime: util.NewDate(2026, 6, 10).Add(14 * time.Hour),
			class:    strPtr("Class 4"),
			runners: []runnerFixture{
				{
					runnerID: "target-a", horseID: "s0", program: 1,
					jockeyID: strPtr("j-s0"), trainerID: strPtr("t-s0"),
					odds: floatPtr(6), draw: int32Ptr(2), weightKg: floatPtr(56),
				},
				{
					runnerID: "target-b", horseID: "f0", program: 2,
					jockeyID: strPtr("j-f0"), trainerID: strPtr("t-f0"),
					odds: floatPtr(2.5), draw: int32Ptr(1), weightKg: floatPtr(55),
				},
			},
		})

		scorer := NewScorerService(store, store, store, featureService)
		picks, err := scorer.Score(ctx, "target", nil)
		require.NoError(t, err)
		require.Len(t, picks, 2)

		require.Equal(t, []int{1, 2}, []int{picks[0].Rank, picks[1].Rank})
		require.Equal(t, "target-b", picks[0].RunnerID)
		require.Greater(t, picks[0].Score, picks[1].Score)

		// scoring again produces the identical sheet
		again, err := scorer.Score(ctx, "target", nil)
		require.NoError(t, err)
		require.Equal(t, "", cmp.Diff(picks, again))
	})

	t.Run("no trained artifact", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedRace(t, store, raceFixture{
			raceID:   "r1",
			postTime: util.NewDate(2026, 6, 1),
			runners:  []runnerFixture{{runnerID: "a", horseID: "h1", program: 1}},
		})
		scorer := NewScorerService(store, store, store, newTestFeatureService(store, testFeaturesConfig()))

		_, err := scorer.Score(ctx, "r1", nil)
		require.ErrorIs(t, err, repository.ErrNoArtifact)
	})

	t.Run("unknown artifact id", func(t *testing.T) {
		store := repository.NewMemoryStore()
		scorer := NewScorerService(store, store, store, newTestFeatureService(store, testFeaturesConfig()))

		id := uuid.New()
		_, err := scorer.Score(ctx, "r1", &id)
		require.ErrorIs(t, err, repository.ErrNoArtifact)
	})

	t.Run("refuses a schema mismatched artifact", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedScenario(t, store, 8)
		trainedWith := newTestFeatureService(store, testFeaturesConfig())
		trainer := newTestTrainer(store, trainedWith)
		artifact, err := trainer.Train(ctx, util.NewDate(2026, 4, 1), util.NewDate(2026, 6, 1))
		require.NoError(t, err)

		// config drifted since the artifact was trained
		drifted := testFeaturesConfig()
		drifted.Expressions = map[string]string{"blend": "winRate(5) * 0.5"}
		scorer := NewScorerService(store, store, store, newTestFeatureService(store, drifted))

		_, err = scorer.Score(ctx, "sc-0", nil)
		mismatch := SchemaMismatchError{}
		require.ErrorAs(t, err, &mismatch)
		require.Equal(t, artifact.ModelArtifactID, mismatch.ArtifactID)
		require.Equal(t, artifact.FeatureSchemaHash, mismatch.ArtifactHash)
	})

	t.Run("refuses an artifact trained under different priors", func(t *testing.T) {
		store := repository.NewMemoryStore()
		seedScenario(t, store, 8)
		trainedWith := newTestFeatureService(store, testFeaturesConfig())
		trainer := newTestTrainer(store, trainedWith)
		artifact, err := trainer.Train(ctx, util.NewDate(2026, 4, 1), util.NewDate(2026, 6, 1))
		require.NoError(t, err)

		// a prior edit shifts what the sentinel feature values mean, so the
		// artifact's weights no longer apply
		drifted := testFeaturesConfig()
		drifted.Priors.WinRate = 0.2
		scorer := NewScorerService(store, store, store, newTestFeatureService(store, drifted))

		_, err = scorer.Score(ctx, "sc-0", nil)
		mismatch := SchemaMismatchError{}
		require.ErrorAs(t, err, &mismatch)
		require.Equal(t, artifact.ModelArtifactID, mismatch.ArtifactID)
	})
}

func TestRankPicks(t *testing.T) {
	picks := []domain.Pick{
		{RunnerID: "c", ProgramNumber: 7, Score: 0.2},
		{RunnerID: "a", ProgramNumber: 4, Score: 0.5},
		{RunnerID: "b", ProgramNumber: 2, Score: 0.5},
		{RunnerID: "d", ProgramNumber: 1, Score: 0.1},
	}

	rankPicks(picks)

	require.Equal(t, "", cmp.Diff([]domain.Pick{
		{RunnerID: "b", ProgramNumber: 2, Score: 0.5, Rank: 1},
		{RunnerID: "a", ProgramNumber: 4, Score: 0.5, Rank: 2},
		{RunnerID: "c", ProgramNumber: 7, Score: 0.2, Rank: 3},
		{RunnerID: "d", ProgramNumber: 1, Score: 0.1, Rank: 4},
	}, picks))
}

func TestWritePicksCSV(t *testing.T) {
	buf := bytes.Buffer{}
	err := WritePicksCSV(&buf, []domain.Pick{
		{RaceID: "r1", RunnerID: "a", ProgramNumber: 2, Score: 0.61, Rank: 1},
		{RaceID: "r1", RunnerID: "b", ProgramNumber: 1, Score: 0.39, Rank: 2},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "race_id,runner_id,program_number,score,rank", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "r1,a,2,0.61,1"))
}
