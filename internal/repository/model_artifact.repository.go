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
	"github.com/google/uuid"
)

// ErrNoArtifact means no model has been trained yet.
var ErrNoArtifact = errors.New("no model artifact found")

type ModelArtifactRepository interface {
	Add(tx *sql.Tx, artifact model.ModelArtifact) (*model.ModelArtifact, error)
	GetByID(id uuid.UUID) (*model.ModelArtifact, error)
	GetLatest() (*model.ModelArtifact, error)
}

type modelArtifactRepositoryHandler struct {
	Db *sql.DB
}

func NewModelArtifactRepository(db *sql.DB) ModelArtifactRepository {
	return modelArtifactRepositoryHandler{db}
}

// Add is insert-only; artifacts are immutable once written.
func (h modelArtifactRepositoryHandler) Add(tx *sql.Tx, artifact model.ModelArtifact) (*model.ModelArtifact, error) {
	if artifact.ModelArtifactID == uuid.Nil {
		artifact.ModelArtifactID = uuid.New()
	}
	artifact.CreatedAt = time.Now().UTC()

	query := table.ModelArtifact.
		INSERT(table.ModelArtifact.AllColumns).
		MODEL(artifact).
		RETURNING(table.ModelArtifact.AllColumns)

	var db qrm.Queryable = h.Db
	if tx != nil {
		db = tx
	}

	out := model.ModelArtifact{}
	err := query.Query(db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to add model artifact: %w", err)
	}

	return &out, nil
}

func (h modelArtifactRepositoryHandler) GetByID(id uuid.UUID) (*model.ModelArtifact, error) {
	query := table.ModelArtifact.
		SELECT(table.ModelArtifact.AllColumns).
		WHERE(table.ModelArtifact.ModelArtifactID.EQ(postgres.UUID(id)))

	out := model.ModelArtifact{}
	err := query.Query(h.Db, &out)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, ErrNoArtifact
	} else if err != nil {
		return nil, fmt.Errorf("failed to get model artifact %s: %w", id, err)
	}

	return &out, nil
}

func (h modelArtifactRepositoryHandler) GetLatest() (*model.ModelArtifact, error) {
	query := table.ModelArtifact.
		SELECT(table.ModelArtifact.AllColumns).
		ORDER_BY(table.ModelArtifact.TrainedAt.DESC()).
		LIMIT(1)

	out := model.ModelArtifact{}
	err := query.Query(h.Db, &out)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, ErrNoArtifact
	} else if err != nil {
		return nil, fmt.Errorf("failed to get latest model artifact: %w", err)
	}

	return &out, nil
}
