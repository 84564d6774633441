package domain

import "time"

// RunnerStart is one historical start, joined across race, runner and result.
// The effective timestamp of a start is its race's post time; bounded history
// queries only ever return starts whose post time is strictly before the
// requested bound.
type RunnerStart struct {
	RaceID         string
	RunnerID       string
	HorseID        string
	JockeyID       *string
	TrainerID      *string
	PostTime       time.Time
	Track          string
	Class          *string
	DistanceMeters float64
	Draw           *int32
	WeightKg       *float64
	FinishPosition *int32
	FinishTimeSecs *float64
	FinalOdds      *float64
	Status         string
}

// Finished reports whether the start produced a usable finishing position.
func (s RunnerStart) Finished() bool {
	return s.FinishPosition != nil && *s.FinishPosition > 0
}

func (s RunnerStart) Won() bool {
	return s.Finished() && *s.FinishPosition == 1
}

func (s RunnerStart) Placed() bool {
	return s.Finished() && *s.FinishPosition <= 3
}
