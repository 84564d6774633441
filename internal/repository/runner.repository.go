package repository

import (
	"database/sql"
	"fmt"
	"formrank/internal/db/models/postgres/public/model"
	"formrank/internal/db/models/postgres/public/table"
	"time"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
)

type RunnerRepository interface {
	UpsertMany(tx *sql.Tx, runners []model.Runner) error
	ListByRace(raceID string) ([]model.Runner, error)
}

type runnerRepositoryHandler struct {
	Db *sql.DB
}

func NewRunnerRepository(db *sql.DB) RunnerRepository {
	return runnerRepositoryHandler{db}
}

// UpsertMany refreshes the mutable pre-race attributes (odds, weight, draw)
// on conflict. Runners are never deleted, only superseded by newer ingests of
// the same (race, runner) key.
func (h runnerRepositoryHandler) UpsertMany(tx *sql.Tx, runners []model.Runner) error {
	if len(runners) == 0 {
		return nil
	}

	for i := range runners {
		runners[i].CreatedAt = time.Now().UTC()
		runners[i].UpdatedAt = time.Now().UTC()
	}

	query := table.Runner.
		INSERT(table.Runner.AllColumns).
		MODELS(runners).
		ON_CONFLICT(table.Runner.RaceID, table.Runner.RunnerID).
		DO_UPDATE(
			postgres.SET(
				table.Runner.HorseID.SET(table.Runner.EXCLUDED.HorseID),
				table.Runner.JockeyID.SET(table.Runner.EXCLUDED.JockeyID),
				table.Runner.TrainerID.SET(table.Runner.EXCLUDED.TrainerID),
				table.Runner.ProgramNumber.SET(table.Runner.EXCLUDED.ProgramNumber),
				table.Runner.Draw.SET(table.Runner.EXCLUDED.Draw),
				table.Runner.WeightKg.SET(table.Runner.EXCLUDED.WeightKg),
				table.Runner.MorningLineOdds.SET(table.Runner.EXCLUDED.MorningLineOdds),
				table.Runner.UpdatedAt.SET(table.Runner.EXCLUDED.UpdatedAt),
			),
		)

	var db qrm.Executable = h.Db
	if tx != nil {
		db = tx
	}

	_, err := query.Exec(db)
	if err != nil {
		return fmt.Errorf("failed to upsert %d runners: %w", len(runners), err)
	}

	return nil
}

func (h runnerRepositoryHandler) ListByRace(raceID string) ([]model.Runner, error) {
	query := table.Runner.
		SELECT(table.Runner.AllColumns).
		WHERE(table.Runner.RaceID.EQ(postgres.String(raceID))).
		ORDER_BY(table.Runner.ProgramNumber.ASC())

	out := []model.Runner{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to list runners for race %s: %w", raceID, err)
	}

	return out, nil
}
