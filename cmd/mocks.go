package cmd

import (
	"time"

	"formrank/pkg/racingapi"
)

// staticCardSource serves a tiny canned race day so the whole pipeline can
// be exercised end to end without provider credentials. Should not be used
// in prod, obv.
type staticCardSource struct{}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func intPtr(i int) *int {
	return &i
}

func (staticCardSource) GetDailyCards(day time.Time) ([]racingapi.RaceCard, error) {
	post := time.Date(day.Year(), day.Month(), day.Day(), 14, 30, 0, 0, time.UTC)
	return []racingapi.RaceCard{
		{
			RaceID:         day.Format("20060102") + "-DMR-1",
			Track:          "Del Mar",
			RaceNumber:     1,
			PostTime:       post.Format(time.RFC3339),
			DistanceMeters: 1600,
			Surface:        strPtr("dirt"),
			Class:          strPtr("Class 4"),
			Country:        strPtr("US"),
			Runners: []racingapi.CardRunner{
				{
					RunnerID:      "r1",
					HorseID:       "h1",
					JockeyID:      strPtr("j1"),
					TrainerID:     strPtr("t1"),
					ProgramNumber: 1,
					Draw:          intPtr(3),
					WeightKg:      floatPtr(55.5),
					MorningLine:   "5/2",
				},
				{
					RunnerID:           "r2",
					HorseID:            "h2",
					JockeyID:           strPtr("j2"),
					TrainerID:          strPtr("t2"),
					ProgramNumber:      2,
					Draw:               intPtr(1),
					WeightKg:           floatPtr(56),
					MorningLineDecimal: floatPtr(4.5),
				},
				{
					RunnerID:      "r3",
					HorseID:       "h3",
					ProgramNumber: 3,
					MorningLine:   "evs",
				},
			},
		},
	}, nil
}

func (staticCardSource) GetDailyResults(day time.Time) ([]racingapi.ResultSheet, error) {
	return []racingapi.ResultSheet{
		{
			RaceID: day.Format("20060102") + "-DMR-1",
			Results: []racingapi.RunnerResult{
				{RunnerID: "r1", FinishPosition: intPtr(1), FinishTimeSecs: floatPtr(96.2), FinalOdds: floatPtr(3.1), Status: "finished"},
				{RunnerID: "r2", FinishPosition: intPtr(2), FinishTimeSecs: floatPtr(96.8), FinalOdds: floatPtr(5.0), Status: "finished"},
				{RunnerID: "r3", Status: "dnf"},
			},
		},
	}, nil
}
