package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"formrank/api"
	"formrank/internal/app"
	"formrank/internal/repository"
	"formrank/internal/service"
	"formrank/internal/util"
	"formrank/pkg/racingapi"

	_ "github.com/lib/pq"
)

func CloseDependencies(handler *api.ApiHandler) {
	if handler.Db == nil {
		return
	}
	err := handler.Db.Close()
	if err != nil {
		log.Fatalf("failed to close db: %v", err)
	}
}

func configPath() string {
	if p := os.Getenv("FORMRANK_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

func InitializeDependencies() (*api.ApiHandler, error) {
	cfg, err := util.LoadPipelineConfig(configPath())
	if err != nil {
		return nil, err
	}

	var dbConn *sql.DB
	var raceRepository repository.RaceRepository
	var runnerRepository repository.RunnerRepository
	var resultRepository repository.ResultRepository
	var historyRepository repository.RunnerHistoryRepository
	var artifactRepository repository.ModelArtifactRepository
	var featureScoreRepository repository.FeatureScoreRepository
	var source app.CardSource

	if strings.EqualFold(os.Getenv("FORMRANK_ENV"), "test") {
		// everything runs off the in-memory store; no secrets, no network
		store := repository.NewMemoryStore()
		raceRepository = store
		runnerRepository = store
		resultRepository = store
		historyRepository = store
		artifactRepository = store
		featureScoreRepository = store
		source = staticCardSource{}
	} else {
		secrets, err := util.LoadSecrets()
		if err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}

		dbConn, err = sql.Open("postgres", secrets.Db.ToConnectionStr())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to db: %w", err)
		}

		raceRepository = repository.NewRaceRepository(dbConn)
		runnerRepository = repository.NewRunnerRepository(dbConn)
		resultRepository = repository.NewResultRepository(dbConn)
		historyRepository = repository.NewRunnerHistoryRepository(dbConn)
		artifactRepository = repository.NewModelArtifactRepository(dbConn)
		featureScoreRepository = repository.NewFeatureScoreRepository(dbConn)
		source = racingapi.Client{
			HttpClient: http.DefaultClient,
			BaseUrl:    racingapi.DefaultBaseUrl,
			ApiKey:     secrets.RacingApiKey,
		}
	}

	featureService := service.NewFeatureService(
		raceRepository,
		runnerRepository,
		featureScoreRepository,
		historyRepository,
		cfg.Features,
	)
	trainerService := service.NewTrainerService(
		raceRepository,
		runnerRepository,
		resultRepository,
		artifactRepository,
		featureService,
		cfg.Trainer,
	)
	scorerService := service.NewScorerService(
		raceRepository,
		runnerRepository,
		artifactRepository,
		featureService,
	)

	apiHandler := &api.ApiHandler{
		Db: dbConn,
		IngestHandler: app.IngestHandler{
			Db:                     dbConn,
			Source:                 source,
			RaceRepository:         raceRepository,
			RunnerRepository:       runnerRepository,
			ResultRepository:       resultRepository,
			FeatureScoreRepository: featureScoreRepository,
		},
		TrainerService: trainerService,
		ScorerService:  scorerService,
	}

	return apiHandler, nil
}
