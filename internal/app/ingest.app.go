package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"formrank/internal/db/models/postgres/public/model"
	"formrank/internal/logger"
	"formrank/internal/repository"
	"formrank/pkg/racingapi"
)

// CardSource is the upstream race data feed. The concrete client lives in
// pkg/racingapi; everything in here treats the provider as a black box so
// tests can swap in canned payloads.
type CardSource interface {
	GetDailyCards(day time.Time) ([]racingapi.RaceCard, error)
	GetDailyResults(day time.Time) ([]racingapi.ResultSheet, error)
}

// IngestRecordError wraps a failure on a single provider record. One bad
// record never aborts the day; these are collected on the summary.
type IngestRecordError struct {
	Kind   string // "card" or "results"
	RaceID string
	Err    error
}

func (e IngestRecordError) Error() string {
	return fmt.Sprintf("failed to ingest %s for race %s: %v", e.Kind, e.RaceID, e.Err)
}

func (e IngestRecordError) Unwrap() error {
	return e.Err
}

type IngestSummary struct {
	RacesUpserted     int      `json:"racesUpserted"`
	RunnersUpserted   int      `json:"runnersUpserted"`
	ResultsAppended   int      `json:"resultsAppended"`
	DuplicatesSkipped int      `json:"duplicatesSkipped"`
	Errors            []string `json:"errors"`
}

type IngestHandler struct {
	Db                     *sql.DB
	Source                 CardSource
	RaceRepository         repository.RaceRepository
	RunnerRepository       repository.RunnerRepository
	ResultRepository       repository.ResultRepository
	FeatureScoreRepository repository.FeatureScoreRepository
}

// IngestDay pulls one day's cards and results and lands them in the store.
// Each race is its own transaction: one malformed card never rolls back its
// neighbors, and re-running the same day is a no-op apart from refreshed
// pre-race attributes. Result rows are write-once; duplicates are counted
// and skipped.
func (h IngestHandler) IngestDay(ctx context.Context, day time.Time) (*IngestSummary, error) {
	log := logger.FromContext(ctx)
	summary := &IngestSummary{Errors: []string{}}

	cards, err := h.Source.GetDailyCards(day)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cards for %s: %w", day.Format("2006-01-02"), err)
	}
	for _, card := range cards {
		err = h.ingestCard(card, summary)
		if err != nil {
			recordErr := IngestRecordError{Kind: "card", RaceID: card.RaceID, Err: err}
			summary.Errors = append(summary.Errors, recordErr.Error())
		}
	}

	sheets, err := h.Source.GetDailyResults(day)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results for %s: %w", day.Format("2006-01-02"), err)
	}
	for _, sheet := range sheets {
		err = h.ingestResultSheet(sheet, summary)
		if err != nil {
			recordErr := IngestRecordError{Kind: "results", RaceID: sheet.RaceID, Err: err}
			summary.Errors = append(summary.Errors, recordErr.Error())
		}
	}

	log.Infof(
		"ingested %s: %d races, %d runners, %d results (%d duplicates, %d errors)",
		day.Format("2006-01-02"),
		summary.RacesUpserted,
		summary.RunnersUpserted,
		summary.ResultsAppended,
		summary.DuplicatesSkipped,
		len(summary.Errors),
	)
	return summary, nil
}

func (h IngestHandler) ingestCard(card racingapi.RaceCard, summary *IngestSummary) error {
	race, err := normalizeRace(card)
	if err != nil {
		return err
	}
	if len(card.Runners) == 0 {
		return fmt.Errorf("card %s has no runners", card.RaceID)
	}
	runners := make([]model.Runner, 0, len(card.Runners))
	for _, entry := range card.Runners {
		runner, err := normalizeRunner(race.RaceID, entry)
		if err != nil {
			return err
		}
		runners = append(runners, runner)
	}

	tx, commit, rollback, err := h.beginTx()
	if err != nil {
		return err
	}
	defer rollback()

	err = h.RaceRepository.Upsert(tx, race)
	if err != nil {
		return fmt.Errorf("failed to upsert race %s: %w", race.RaceID, err)
	}
	err = h.RunnerRepository.UpsertMany(tx, runners)
	if err != nil {
		return fmt.Errorf("failed to upsert runners for race %s: %w", race.RaceID, err)
	}
	err = commit()
	if err != nil {
		return err
	}

	summary.RacesUpserted++
	summary.RunnersUpserted += len(runners)
	return nil
}

func (h IngestHandler) ingestResultSheet(sheet racingapi.ResultSheet, summary *IngestSummary) error {
	if sheet.RaceID == "" {
		return fmt.Errorf("result sheet missing race_id")
	}
	race, err := h.RaceRepository.Get(sheet.RaceID)
	if err != nil {
		return fmt.Errorf("result sheet references unknown race %s: %w", sheet.RaceID, err)
	}

	results := make([]model.RaceResult, 0, len(sheet.Results))
	for _, entry := range sheet.Results {
		result, err := normalizeResult(race.RaceID, entry)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	runners, err := h.RunnerRepository.ListByRace(race.RaceID)
	if err != nil {
		return err
	}
	horseIDs := make([]string, 0, len(runners))
	for _, r := range runners {
		horseIDs = append(horseIDs, r.HorseID)
	}

	tx, commit, rollback, err := h.beginTx()
	if err != nil {
		return err
	}
	defer rollback()

	appended := 0
	for _, result := range results {
		err = h.ResultRepository.Append(tx, result)
		if err != nil {
			duplicate := repository.DuplicateResultError{}
			if errors.As(err, &duplicate) {
				summary.DuplicatesSkipped++
				continue
			}
			return fmt.Errorf("failed to append result for runner %s in race %s: %w", result.RunnerID, race.RaceID, err)
		}
		appended++
	}

	// New results change every one of these horses' histories, so any cached
	// feature vectors built on the old history are stale.
	if appended > 0 {
		err = h.FeatureScoreRepository.InvalidateHorses(tx, horseIDs)
		if err != nil {
			return fmt.Errorf("failed to invalidate cached features for race %s: %w", race.RaceID, err)
		}
	}

	err = commit()
	if err != nil {
		return err
	}

	summary.ResultsAppended += appended
	return nil
}

// beginTx returns a no-op transaction when no database handle is configured,
// which is how the in-memory store is driven in tests.
func (h IngestHandler) beginTx() (*sql.Tx, func() error, func() error, error) {
	if h.Db == nil {
		noop := func() error { return nil }
		return nil, noop, noop, nil
	}
	tx, err := h.Db.Begin()
	if err != nil {
		return nil, nil, nil, err
	}
	commit := func() error { return tx.Commit() }
	rollback := func() error { return tx.Rollback() }
	return tx, commit, rollback, nil
}
