package repository

import (
	"database/sql"
	"fmt"
	"formrank/internal/db/models/postgres/public/model"
	"formrank/internal/db/models/postgres/public/table"
	"formrank/internal/domain"
	"time"

	"github.com/go-jet/jet/v2/postgres"
)

// RunnerHistoryRepository is the enforcement point for the no-leakage bound.
// Every method takes an explicit `before` timestamp and only returns starts
// whose race post time is strictly before it. Feature code must never read
// history through anything else.
type RunnerHistoryRepository interface {
	ListByHorse(horseID string, before time.Time, limit int) ([]domain.RunnerStart, error)
	ListByJockey(jockeyID string, before time.Time, limit int) ([]domain.RunnerStart, error)
	ListByTrainer(trainerID string, before time.Time, limit int) ([]domain.RunnerStart, error)
	ListByCombo(jockeyID, trainerID string, before time.Time, limit int) ([]domain.RunnerStart, error)
}

type runnerHistoryRepositoryHandler struct {
	Db *sql.DB
}

func NewRunnerHistoryRepository(db *sql.DB) RunnerHistoryRepository {
	return runnerHistoryRepositoryHandler{db}
}

type runnerStartRow struct {
	model.Runner
	Race   model.Race
	Result *model.RaceResult
}

// historyQuery builds the bounded starts query. A limit of zero (or less)
// means the full history; the LIMIT clause is only rendered for positive
// values, since `LIMIT 0` would return nothing.
func historyQuery(predicate postgres.BoolExpression, before time.Time, limit int) postgres.SelectStatement {
	query := table.Runner.
		INNER_JOIN(table.Race, table.Race.RaceID.EQ(table.Runner.RaceID)).
		LEFT_JOIN(table.RaceResult, table.RaceResult.RaceID.EQ(table.Runner.RaceID).
			AND(table.RaceResult.RunnerID.EQ(table.Runner.RunnerID))).
		SELECT(
			table.Runner.AllColumns,
			table.Race.AllColumns,
			table.RaceResult.AllColumns,
		).
		WHERE(
			postgres.AND(
				predicate,
				table.Race.PostTime.LT(postgres.TimestampzT(before)),
			),
		).
		ORDER_BY(table.Race.PostTime.DESC(), table.Runner.RunnerID.ASC())
	if limit > 0 {
		query = query.LIMIT(int64(limit))
	}
	return query
}

func (h runnerHistoryRepositoryHandler) list(predicate postgres.BoolExpression, before time.Time, limit int) ([]domain.RunnerStart, error) {
	query := historyQuery(predicate, before, limit)

	rows := []runnerStartRow{}
	err := query.Query(h.Db, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list runner history before %v: %w", before, err)
	}

	out := make([]domain.RunnerStart, 0, len(rows))
	for _, r := range rows {
		out = append(out, toRunnerStart(r))
	}

	return out, nil
}

func toRunnerStart(r runnerStartRow) domain.RunnerStart {
	start := domain.RunnerStart{
		RaceID:         r.Runner.RaceID,
		RunnerID:       r.Runner.RunnerID,
		HorseID:        r.Runner.HorseID,
		JockeyID:       r.Runner.JockeyID,
		TrainerID:      r.Runner.TrainerID,
		PostTime:       r.Race.PostTime,
		Track:          r.Race.Track,
		Class:          r.Race.Class,
		DistanceMeters: r.Race.DistanceMeters,
		Draw:           r.Runner.Draw,
		WeightKg:       r.Runner.WeightKg,
	}
	if r.Result != nil {
		start.FinishPosition = r.Result.FinishPosition
		start.FinishTimeSecs = r.Result.FinishTimeSecs
		start.FinalOdds = r.Result.FinalOdds
		start.Status = r.Result.Status
	}
	return start
}

func (h runnerHistoryRepositoryHandler) ListByHorse(horseID string, before time.Time, limit int) ([]domain.RunnerStart, error) {
	return h.list(table.Runner.HorseID.EQ(postgres.String(horseID)), before, limit)
}

func (h runnerHistoryRepositoryHandler) ListByJockey(jockeyID string, before time.Time, limit int) ([]domain.RunnerStart, error) {
	return h.list(table.Runner.JockeyID.EQ(postgres.String(jockeyID)), before, limit)
}

func (h runnerHistoryRepositoryHandler) ListByTrainer(trainerID string, before time.Time, limit int) ([]domain.RunnerStart, error) {
	return h.list(table.Runner.TrainerID.EQ(postgres.String(trainerID)), before, limit)
}

func (h runnerHistoryRepositoryHandler) ListByCombo(jockeyID, trainerID string, before time.Time, limit int) ([]domain.RunnerStart, error) {
	return h.list(
		postgres.AND(
			table.Runner.JockeyID.EQ(postgres.String(jockeyID)),
			table.Runner.TrainerID.EQ(postgres.String(trainerID)),
		),
		before,
		limit,
	)
}
