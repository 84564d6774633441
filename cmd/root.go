package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"formrank/internal/logger"
	"formrank/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "formrank",
	Short: "formrank ingests race data, trains win models and prints ranked picks",
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Pull one day of cards and results into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		dateStr, err := cmd.Flags().GetString("date")
		if err != nil {
			return err
		}
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", dateStr)
		}

		handler, err := InitializeDependencies()
		if err != nil {
			return err
		}
		defer CloseDependencies(handler)

		summary, err := handler.IngestHandler.IngestDay(newRunContext(), day)
		if err != nil {
			return err
		}
		fmt.Printf(
			"%s: %d races, %d runners, %d results, %d duplicates skipped\n",
			dateStr, summary.RacesUpserted, summary.RunnersUpserted,
			summary.ResultsAppended, summary.DuplicatesSkipped,
		)
		for _, e := range summary.Errors {
			fmt.Printf("error: %s\n", e)
		}
		return nil
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit a win model on the settled races in a date window",
	RunE: func(cmd *cobra.Command, args []string) error {
		startStr, err := cmd.Flags().GetString("start")
		if err != nil {
			return err
		}
		endStr, err := cmd.Flags().GetString("end")
		if err != nil {
			return err
		}
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return fmt.Errorf("invalid --start %q, expected YYYY-MM-DD", startStr)
		}
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return fmt.Errorf("invalid --end %q, expected YYYY-MM-DD", endStr)
		}
		end = end.Add(24*time.Hour - time.Second)

		handler, err := InitializeDependencies()
		if err != nil {
			return err
		}
		defer CloseDependencies(handler)

		artifact, err := handler.TrainerService.Train(newRunContext(), start, end)
		if err != nil {
			return err
		}
		fmt.Printf("trained artifact %s on %d races\n", artifact.ModelArtifactID, artifact.TrainRaceCount)
		if artifact.Metrics != nil {
			fmt.Println(*artifact.Metrics)
		}
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Rank a race's runners and print picks",
	RunE: func(cmd *cobra.Command, args []string) error {
		raceID, err := cmd.Flags().GetString("race")
		if err != nil {
			return err
		}
		if raceID == "" {
			return fmt.Errorf("--race is required")
		}
		artifactStr, err := cmd.Flags().GetString("artifact")
		if err != nil {
			return err
		}
		var artifactID *uuid.UUID
		if artifactStr != "" {
			parsed, err := uuid.Parse(artifactStr)
			if err != nil {
				return fmt.Errorf("invalid --artifact %q", artifactStr)
			}
			artifactID = &parsed
		}
		csvOut, err := cmd.Flags().GetString("csv")
		if err != nil {
			return err
		}

		handler, err := InitializeDependencies()
		if err != nil {
			return err
		}
		defer CloseDependencies(handler)

		picks, err := handler.ScorerService.Score(newRunContext(), raceID, artifactID)
		if err != nil {
			return err
		}

		if csvOut != "" {
			f, err := os.Create(csvOut)
			if err != nil {
				return err
			}
			defer f.Close()
			return service.WritePicksCSV(f, picks)
		}
		for _, p := range picks {
			fmt.Printf("%2d. #%-3d %s  %.4f\n", p.Rank, p.ProgramNumber, p.RunnerID, p.Score)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			return err
		}
		handler, err := InitializeDependencies()
		if err != nil {
			return err
		}
		defer CloseDependencies(handler)
		return handler.StartApi(port)
	},
}

func newRunContext() context.Context {
	return context.WithValue(context.Background(), logger.ContextKey, logger.New())
}

func init() {
	ingestCmd.Flags().String("date", time.Now().UTC().Format("2006-01-02"), "race day to ingest (YYYY-MM-DD)")
	trainCmd.Flags().String("start", "", "first race day of the training window (YYYY-MM-DD)")
	trainCmd.Flags().String("end", "", "last race day of the training window, inclusive (YYYY-MM-DD)")
	trainCmd.MarkFlagRequired("start")
	trainCmd.MarkFlagRequired("end")
	scoreCmd.Flags().String("race", "", "race id to score")
	scoreCmd.Flags().String("artifact", "", "model artifact id (defaults to latest)")
	scoreCmd.Flags().String("csv", "", "write picks to this csv file instead of stdout")
	serveCmd.Flags().Int("port", 3009, "port to listen on")

	rootCmd.AddCommand(ingestCmd, trainCmd, scoreCmd, serveCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
