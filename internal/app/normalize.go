package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"formrank/internal/db/models/postgres/public/model"
	"formrank/pkg/racingapi"

	"github.com/shopspring/decimal"
)

const (
	metersPerFurlong = 201.168
	kgPerLb          = 0.45359237
)

// normalizeRace maps a provider card onto the canonical race row. Provider
// feeds disagree on field names and units, so the fallbacks here are the
// single place that disagreement is resolved.
func normalizeRace(card racingapi.RaceCard) (model.Race, error) {
	if card.RaceID == "" {
		return model.Race{}, fmt.Errorf("card missing race_id")
	}

	track := card.Track
	if track == "" {
		track = card.Course
	}
	if track == "" {
		return model.Race{}, fmt.Errorf("card %s missing track", card.RaceID)
	}

	postTime, err := time.Parse(time.RFC3339, card.PostTime)
	if err != nil {
		return model.Race{}, fmt.Errorf("card %s has unparseable post_time %q: %w", card.RaceID, card.PostTime, err)
	}
	postTime = postTime.UTC()

	distance := card.DistanceMeters
	if distance == 0 && card.DistanceFurlongs > 0 {
		distance = card.DistanceFurlongs * metersPerFurlong
	}
	if distance <= 0 {
		return model.Race{}, fmt.Errorf("card %s missing distance", card.RaceID)
	}

	if card.RaceNumber < 1 {
		return model.Race{}, fmt.Errorf("card %s has invalid race_number %d", card.RaceID, card.RaceNumber)
	}

	return model.Race{
		RaceID:         card.RaceID,
		Track:          track,
		RaceDate:       time.Date(postTime.Year(), postTime.Month(), postTime.Day(), 0, 0, 0, 0, time.UTC),
		PostTime:       postTime,
		RaceNumber:     int32(card.RaceNumber),
		DistanceMeters: distance,
		Surface:        card.Surface,
		Class:          card.Class,
		Country:        card.Country,
	}, nil
}

func normalizeRunner(raceID string, entry racingapi.CardRunner) (model.Runner, error) {
	if entry.RunnerID == "" {
		return model.Runner{}, fmt.Errorf("race %s has runner entry missing runner_id", raceID)
	}
	if entry.HorseID == "" {
		return model.Runner{}, fmt.Errorf("runner %s missing horse_id", entry.RunnerID)
	}
	if entry.ProgramNumber < 1 {
		return model.Runner{}, fmt.Errorf("runner %s has invalid program_number %d", entry.RunnerID, entry.ProgramNumber)
	}

	weight := entry.WeightKg
	if weight == nil && entry.WeightLbs != nil {
		kg := *entry.WeightLbs * kgPerLb
		weight = &kg
	}

	odds := entry.MorningLineDecimal
	if odds == nil && entry.MorningLine != "" {
		parsed, err := parseFractionalOdds(entry.MorningLine)
		if err != nil {
			return model.Runner{}, fmt.Errorf("runner %s: %w", entry.RunnerID, err)
		}
		odds = &parsed
	}

	var draw *int32
	if entry.Draw != nil {
		d := int32(*entry.Draw)
		draw = &d
	}

	return model.Runner{
		RaceID:          raceID,
		RunnerID:        entry.RunnerID,
		HorseID:         entry.HorseID,
		JockeyID:        entry.JockeyID,
		TrainerID:       entry.TrainerID,
		ProgramNumber:   int32(entry.ProgramNumber),
		Draw:            draw,
		WeightKg:        weight,
		MorningLineOdds: odds,
	}, nil
}

// parseFractionalOdds converts traditional fractional odds ("5/2", "EVS")
// into decimal odds, i.e. 5/2 pays 3.5 per unit staked.
func parseFractionalOdds(s string) (float64, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "evs" || trimmed == "evens" {
		return 2, nil
	}

	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 {
		return 0, fmt.Errorf("unparseable fractional odds %q", s)
	}
	num, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable fractional odds %q", s)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil || den == 0 || num < 0 || den < 0 {
		return 0, fmt.Errorf("unparseable fractional odds %q", s)
	}

	frac := decimal.NewFromInt(num).Div(decimal.NewFromInt(den))
	return frac.Add(decimal.NewFromInt(1)).InexactFloat64(), nil
}

func normalizeResult(raceID string, r racingapi.RunnerResult) (model.RaceResult, error) {
	if r.RunnerID == "" {
		return model.RaceResult{}, fmt.Errorf("result sheet for race %s has entry missing runner_id", raceID)
	}

	status := strings.ToLower(strings.TrimSpace(r.Status))
	if status == "" {
		status = "finished"
	}

	var position *int32
	if r.FinishPosition != nil {
		if *r.FinishPosition < 1 {
			return model.RaceResult{}, fmt.Errorf("runner %s has invalid finish_position %d", r.RunnerID, *r.FinishPosition)
		}
		p := int32(*r.FinishPosition)
		position = &p
	}
	if position == nil && status == "finished" {
		return model.RaceResult{}, fmt.Errorf("runner %s finished without a finish_position", r.RunnerID)
	}

	return model.RaceResult{
		RaceID:         raceID,
		RunnerID:       r.RunnerID,
		FinishPosition: position,
		MarginLengths:  r.MarginLengths,
		FinalOdds:      r.FinalOdds,
		FinishTimeSecs: r.FinishTimeSecs,
		Status:         status,
	}, nil
}
