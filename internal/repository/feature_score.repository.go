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

// FeatureScoreRepository caches computed feature vectors keyed by
// (race, runner, as_of, schema hash). The cache is strictly an optimization;
// vectors are always recomputable from race/runner/result history. Rows are
// invalidated by horse id whenever that horse's history is re-ingested.
type FeatureScoreRepository interface {
	GetManyForRace(raceID string, asOf time.Time, schemaHash string) (map[string]model.FeatureScore, error)
	AddMany(scores []*model.FeatureScore) error
	InvalidateHorses(tx *sql.Tx, horseIDs []string) error
}

type featureScoreRepositoryHandler struct {
	Db *sql.DB
}

func NewFeatureScoreRepository(db *sql.DB) FeatureScoreRepository {
	return featureScoreRepositoryHandler{db}
}

func (h featureScoreRepositoryHandler) GetManyForRace(raceID string, asOf time.Time, schemaHash string) (map[string]model.FeatureScore, error) {
	query := table.FeatureScore.
		SELECT(table.FeatureScore.AllColumns).
		WHERE(
			postgres.AND(
				table.FeatureScore.RaceID.EQ(postgres.String(raceID)),
				table.FeatureScore.AsOf.EQ(postgres.TimestampzT(asOf)),
				table.FeatureScore.FeatureSchemaHash.EQ(postgres.String(schemaHash)),
			),
		)

	rows := []model.FeatureScore{}
	err := query.Query(h.Db, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get feature scores for race %s: %w", raceID, err)
	}

	out := map[string]model.FeatureScore{}
	for _, r := range rows {
		out[r.RunnerID] = r
	}

	return out, nil
}

func (h featureScoreRepositoryHandler) AddMany(scores []*model.FeatureScore) error {
	if len(scores) == 0 {
		return nil
	}

	for _, s := range scores {
		s.CreatedAt = time.Now().UTC()
	}
	query := table.FeatureScore.
		INSERT(table.FeatureScore.AllColumns).
		MODELS(scores).
		ON_CONFLICT(
			table.FeatureScore.RaceID,
			table.FeatureScore.RunnerID,
			table.FeatureScore.AsOf,
			table.FeatureScore.FeatureSchemaHash,
		).
		DO_UPDATE(
			postgres.SET(
				table.FeatureScore.Features.SET(table.FeatureScore.EXCLUDED.Features),
				table.FeatureScore.CreatedAt.SET(table.FeatureScore.EXCLUDED.CreatedAt),
			),
		)

	_, err := query.Exec(h.Db)
	if err != nil {
		return fmt.Errorf("failed to add feature scores: %w", err)
	}

	return nil
}

func (h featureScoreRepositoryHandler) InvalidateHorses(tx *sql.Tx, horseIDs []string) error {
	if len(horseIDs) == 0 {
		return nil
	}

	ids := []postgres.Expression{}
	for _, id := range horseIDs {
		ids = append(ids, postgres.String(id))
	}
	query := table.FeatureScore.
		DELETE().
		WHERE(table.FeatureScore.HorseID.IN(ids...))

	var db qrm.Executable = h.Db
	if tx != nil {
		db = tx
	}

	_, err := query.Exec(db)
	if err != nil {
		return fmt.Errorf("failed to invalidate feature scores for %d horses: %w", len(horseIDs), err)
	}

	return nil
}
