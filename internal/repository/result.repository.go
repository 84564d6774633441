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

// DuplicateResultError means a result row already exists for the
// (race, runner) pair. Results are write-once to keep training labels stable;
// the stored row is left untouched.
type DuplicateResultError struct {
	RaceID   string
	RunnerID string
}

func (e DuplicateResultError) Error() string {
	return fmt.Sprintf("result already recorded for runner %s in race %s", e.RunnerID, e.RaceID)
}

type ResultRepository interface {
	Append(tx *sql.Tx, result model.RaceResult) error
	ListForRace(raceID string) ([]model.RaceResult, error)
}

type resultRepositoryHandler struct {
	Db *sql.DB
}

func NewResultRepository(db *sql.DB) ResultRepository {
	return resultRepositoryHandler{db}
}

func (h resultRepositoryHandler) Append(tx *sql.Tx, result model.RaceResult) error {
	result.CreatedAt = time.Now().UTC()
	query := table.RaceResult.
		INSERT(table.RaceResult.AllColumns).
		MODEL(result).
		ON_CONFLICT(table.RaceResult.RaceID, table.RaceResult.RunnerID).
		DO_NOTHING()

	var db qrm.Executable = h.Db
	if tx != nil {
		db = tx
	}

	res, err := query.Exec(db)
	if err != nil {
		return fmt.Errorf("failed to append result for runner %s in race %s: %w", result.RunnerID, result.RaceID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return DuplicateResultError{RaceID: result.RaceID, RunnerID: result.RunnerID}
	}

	return nil
}

func (h resultRepositoryHandler) ListForRace(raceID string) ([]model.RaceResult, error) {
	query := table.RaceResult.
		SELECT(table.RaceResult.AllColumns).
		WHERE(table.RaceResult.RaceID.EQ(postgres.String(raceID)))

	out := []model.RaceResult{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for race %s: %w", raceID, err)
	}

	return out, nil
}
