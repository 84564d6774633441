package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"formrank/api"
	"formrank/internal/app"
	"formrank/internal/domain"
	"formrank/internal/repository"
	"formrank/internal/service"
	"formrank/internal/util"
	"formrank/pkg/racingapi"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/require"
)

// fakeFeed replays a deterministic season: one race per day, the same two
// horses, and the favorite always wins with the faster time.
type fakeFeed struct{}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func (fakeFeed) GetDailyCards(day time.Time) ([]racingapi.RaceCard, error) {
	post := time.Date(day.Year(), day.Month(), day.Day(), 14, 0, 0, 0, time.UTC)
	raceID := "race-" + day.Format("20060102")
	return []racingapi.RaceCard{{
		RaceID:         raceID,
		Track:          "Del Mar",
		RaceNumber:     1,
		PostTime:       post.Format(time.RFC3339),
		DistanceMeters: 1600,
		Class:          strPtr("Class 4"),
		Runners: []racingapi.CardRunner{
			{
				RunnerID: raceID + "-a", HorseID: "favorite",
				JockeyID: strPtr("j1"), TrainerID: strPtr("t1"),
				ProgramNumber: 1, Draw: intPtr(1), WeightKg: floatPtr(55),
				MorningLine: "5/2",
			},
			{
				RunnerID: raceID + "-b", HorseID: "longshot",
				JockeyID: strPtr("j2"), TrainerID: strPtr("t2"),
				ProgramNumber: 2, Draw: intPtr(2), WeightKg: floatPtr(55),
				MorningLineDecimal: floatPtr(8),
			},
		},
	}}, nil
}

func (fakeFeed) GetDailyResults(day time.Time) ([]racingapi.ResultSheet, error) {
	raceID := "race-" + day.Format("20060102")
	return []racingapi.ResultSheet{{
		RaceID: raceID,
		Results: []racingapi.RunnerResult{
			{RunnerID: raceID + "-a", FinishPosition: intPtr(1), FinishTimeSecs: floatPtr(94.5), FinalOdds: floatPtr(3.2), Status: "finished"},
			{RunnerID: raceID + "-b", FinishPosition: intPtr(2), FinishTimeSecs: floatPtr(99.1), FinalOdds: floatPtr(9.5), Status: "finished"},
		},
	}}, nil
}

func newPipeline() (api.ApiHandler, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	cfg := util.DefaultPipelineConfig()
	cfg.Trainer.MinSettledRaces = 5
	cfg.Trainer.Steps = 400

	featureService := service.NewFeatureService(store, store, store, store, cfg.Features)
	handler := api.ApiHandler{
		IngestHandler: app.IngestHandler{
			Source:                 fakeFeed{},
			RaceRepository:         store,
			RunnerRepository:       store,
			ResultRepository:       store,
			FeatureScoreRepository: store,
		},
		TrainerService: service.NewTrainerService(store, store, store, store, featureService, cfg.Trainer),
		ScorerService:  service.NewScorerService(store, store, store, featureService),
	}
	return handler, store
}

func TestPipelineEndToEnd(t *testing.T) {
	handler, store := newPipeline()
	ctx := context.Background()

	start := util.NewDate(2026, 5, 1)
	for d := 0; d < 10; d++ {
		summary, err := handler.IngestHandler.IngestDay(ctx, start.AddDate(0, 0, d))
		require.NoError(t, err)
		require.Empty(t, summary.Errors)
	}

	artifact, err := handler.TrainerService.Train(ctx, start, util.NewDate(2026, 5, 11))
	require.NoError(t, err)
	require.Equal(t, int32(10), artifact.TrainRaceCount)

	// card-only day: the next race has no results yet
	scoreDay := util.NewDate(2026, 5, 11)
	cards, err := fakeFeed{}.GetDailyCards(scoreDay)
	require.NoError(t, err)
	raceID := cards[0].RaceID

	onlyCards := handler.IngestHandler
	onlyCards.Source = cardsOnly{fakeFeed{}}
	_, err = onlyCards.IngestDay(ctx, scoreDay)
	require.NoError(t, err)

	picks, err := handler.ScorerService.Score(ctx, raceID, nil)
	require.NoError(t, err)
	require.Len(t, picks, 2)
	require.Equal(t, "favorite", pickHorse(t, store, picks[0]))

	// same day replayed in full leaves the store unchanged except results
	summary, err := handler.IngestHandler.IngestDay(ctx, scoreDay)
	require.NoError(t, err)
	require.Equal(t, 2, summary.ResultsAppended)
}

// cardsOnly suppresses the results half of the feed.
type cardsOnly struct {
	fakeFeed
}

func (cardsOnly) GetDailyResults(day time.Time) ([]racingapi.ResultSheet, error) {
	return nil, nil
}

func pickHorse(t *testing.T, store *repository.MemoryStore, pick domain.Pick) string {
	t.Helper()
	runners, err := store.ListByRace(pick.RaceID)
	require.NoError(t, err)
	for _, r := range runners {
		if r.RunnerID == pick.RunnerID {
			return r.HorseID
		}
	}
	t.Fatalf("runner %s not found in race %s", pick.RunnerID, pick.RaceID)
	return ""
}

func TestApiEndToEnd(t *testing.T) {
	handler, _ := newPipeline()
	router := handler.Router()

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	for d := 0; d < 10; d++ {
		day := util.NewDate(2026, 5, 1).AddDate(0, 0, d)
		w := do(http.MethodPost, "/ingest", map[string]string{"date": day.Format("2006-01-02")})
		require.Equal(t, 200, w.Code)
	}

	w := do(http.MethodPost, "/train", map[string]string{"startDate": "2026-05-01", "endDate": "2026-05-10"})
	require.Equal(t, 200, w.Code, w.Body.String())

	raceID := "race-20260510"
	w = do(http.MethodPost, "/score", map[string]string{"raceID": raceID})
	require.Equal(t, 200, w.Code, w.Body.String())

	scored := struct {
		Picks []domain.Pick `json:"picks"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scored))
	require.Len(t, scored.Picks, 2)
	require.Equal(t, 1, scored.Picks[0].Rank)

	w = do(http.MethodGet, fmt.Sprintf("/picks.csv?raceID=%s", raceID), nil)
	require.Equal(t, 200, w.Code, w.Body.String())

	csvPicks := []domain.Pick{}
	require.NoError(t, gocsv.UnmarshalBytes(w.Body.Bytes(), &csvPicks))
	require.Equal(t, "", cmpDiffPicks(scored.Picks, csvPicks))

	// bad requests are 4xx, not 500
	w = do(http.MethodPost, "/ingest", map[string]string{"date": "junk"})
	require.Equal(t, 400, w.Code)
	w = do(http.MethodPost, "/score", map[string]string{})
	require.Equal(t, 400, w.Code)
}

func cmpDiffPicks(a, b []domain.Pick) string {
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		return fmt.Sprintf("picks differ: %s vs %s", aj, bj)
	}
	return ""
}
