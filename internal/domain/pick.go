package domain

// Pick is one ranked runner in a scored race. Picks are transient output,
// owned by the caller; they are never fed back into training.
type Pick struct {
	RaceID        string  `csv:"race_id" json:"raceID"`
	RunnerID      string  `csv:"runner_id" json:"runnerID"`
	ProgramNumber int32   `csv:"program_number" json:"programNumber"`
	Score         float64 `csv:"score" json:"score"`
	Rank          int     `csv:"rank" json:"rank"`
}
