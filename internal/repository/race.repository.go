package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"formrank/internal/db/models/postgres/public/model"
	"formrank/internal/db/models/postgres/public/table"
	"time"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
)

type RaceRepository interface {
	Upsert(tx *sql.Tx, race model.Race) error
	Get(raceID string) (*model.Race, error)
	ListByPostTimeRange(start, end time.Time) ([]model.Race, error)
}

type raceRepositoryHandler struct {
	Db *sql.DB
}

func NewRaceRepository(db *sql.DB) RaceRepository {
	return raceRepositoryHandler{db}
}

// Upsert is keyed on the provider race id. Re-ingesting an existing race
// refreshes the mutable pre-race attributes (post time, class, distance) and
// never touches result rows.
func (h raceRepositoryHandler) Upsert(tx *sql.Tx, race model.Race) error {
	race.CreatedAt = time.Now().UTC()
	race.UpdatedAt = time.Now().UTC()
	query := table.Race.
		INSERT(table.Race.AllColumns).
		MODEL(race).
		ON_CONFLICT(table.Race.RaceID).
		DO_UPDATE(
			postgres.SET(
				table.Race.Track.SET(table.Race.EXCLUDED.Track),
				table.Race.RaceDate.SET(table.Race.EXCLUDED.RaceDate),
				table.Race.PostTime.SET(table.Race.EXCLUDED.PostTime),
				table.Race.RaceNumber.SET(table.Race.EXCLUDED.RaceNumber),
				table.Race.DistanceMeters.SET(table.Race.EXCLUDED.DistanceMeters),
				table.Race.Surface.SET(table.Race.EXCLUDED.Surface),
				table.Race.Class.SET(table.Race.EXCLUDED.Class),
				table.Race.Country.SET(table.Race.EXCLUDED.Country),
				table.Race.UpdatedAt.SET(table.Race.EXCLUDED.UpdatedAt),
			),
		)

	var db qrm.Executable = h.Db
	if tx != nil {
		db = tx
	}

	_, err := query.Exec(db)
	if err != nil {
		return fmt.Errorf("failed to upsert race %s: %w", race.RaceID, err)
	}

	return nil
}

func (h raceRepositoryHandler) Get(raceID string) (*model.Race, error) {
	query := table.Race.
		SELECT(table.Race.AllColumns).
		WHERE(table.Race.RaceID.EQ(postgres.String(raceID)))

	out := model.Race{}
	err := query.Query(h.Db, &out)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, fmt.Errorf("race %s not found", raceID)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get race %s: %w", raceID, err)
	}

	return &out, nil
}

func (h raceRepositoryHandler) ListByPostTimeRange(start, end time.Time) ([]model.Race, error) {
	query := table.Race.
		SELECT(table.Race.AllColumns).
		WHERE(
			postgres.AND(
				table.Race.PostTime.GT_EQ(postgres.TimestampzT(start)),
				table.Race.PostTime.LT_EQ(postgres.TimestampzT(end)),
			),
		).
		ORDER_BY(table.Race.PostTime.ASC(), table.Race.RaceID.ASC())

	out := []model.Race{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to list races between %v and %v: %w", start, end, err)
	}

	return out, nil
}
