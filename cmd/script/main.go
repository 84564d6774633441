package main

import (
	"context"
	"flag"
	"log"
	"time"

	"formrank/cmd"
	"formrank/internal/logger"

	_ "github.com/lib/pq"
)

// backfills a window of race days and trains a fresh artifact on it
func main() {
	startStr := flag.String("start", "", "first day to backfill (YYYY-MM-DD)")
	endStr := flag.String("end", "", "last day to backfill, inclusive (YYYY-MM-DD)")
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		log.Fatalf("invalid -start: %v", err)
	}
	end, err := time.Parse("2006-01-02", *endStr)
	if err != nil {
		log.Fatalf("invalid -end: %v", err)
	}

	handler, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(handler)

	ctx := context.WithValue(context.Background(), logger.ContextKey, logger.New())

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		summary, err := handler.IngestHandler.IngestDay(ctx, day)
		if err != nil {
			log.Fatal(err)
		}
		for _, e := range summary.Errors {
			log.Printf("%s: %s", day.Format("2006-01-02"), e)
		}
	}

	artifact, err := handler.TrainerService.Train(ctx, start, end.Add(24*time.Hour-time.Second))
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("trained artifact %s on %d races", artifact.ModelArtifactID, artifact.TrainRaceCount)
}
