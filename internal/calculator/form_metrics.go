package calculator

import (
	"formrank/internal/domain"
	"formrank/internal/repository"
	"time"

	"github.com/montanaflynn/stats"
)

// FormMetricsMissingDataError means a runner had no usable history for a
// metric. Callers substitute the configured prior rather than failing;
// training and scoring handle sparse runners identically.
type FormMetricsMissingDataError struct {
	Err error
}

func (e FormMetricsMissingDataError) Error() string {
	return e.Err.Error()
}

// FormMetricCalculations computes rolling form aggregates for a horse,
// jockey or trainer. Every method takes an explicit `before` bound and is
// implemented exclusively against the bounded history query; no metric may
// read a start whose post time is at or after the bound.
type FormMetricCalculations interface {
	CareerStarts(horseID string, before time.Time) (float64, error)
	WinRate(horseID string, before time.Time, lastN int) (float64, error)
	PlaceRate(horseID string, before time.Time, lastN int) (float64, error)
	AvgFinishPosition(horseID string, before time.Time, lastN int) (float64, error)
	DaysSinceLastStart(horseID string, before time.Time) (float64, error)
	ClassDelta(horseID string, before time.Time, currentClass *string) (float64, error)
	ComboWinRate(jockeyID, trainerID string, before time.Time, lastN int) (float64, error)
	AvgSpeedRating(horseID string, before time.Time, lastN int) (float64, error)
	BestSpeedRating(horseID string, before time.Time, lastN int) (float64, error)
}

type formMetricsHandler struct {
	HistoryRepository repository.RunnerHistoryRepository
}

func NewFormMetricsHandler(historyRepository repository.RunnerHistoryRepository) FormMetricCalculations {
	return formMetricsHandler{
		HistoryRepository: historyRepository,
	}
}

func missingData(format string, args ...interface{}) error {
	return FormMetricsMissingDataError{Err: errorf(format, args...)}
}

func (h formMetricsHandler) finishedStarts(horseID string, before time.Time, lastN int) ([]domain.RunnerStart, error) {
	starts, err := h.HistoryRepository.ListByHorse(horseID, before, lastN)
	if err != nil {
		return nil, err
	}
	out := []domain.RunnerStart{}
	for _, s := range starts {
		if s.Finished() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (h formMetricsHandler) CareerStarts(horseID string, before time.Time) (float64, error) {
	starts, err := h.HistoryRepository.ListByHorse(horseID, before, 0)
	if err != nil {
		return 0, err
	}
	return float64(len(starts)), nil
}

func (h formMetricsHandler) WinRate(horseID string, before time.Time, lastN int) (float64, error) {
	starts, err := h.finishedStarts(horseID, before, lastN)
	if err != nil {
		return 0, err
	}
	if len(starts) == 0 {
		return 0, missingData("%s has no finished starts before %v", horseID, before)
	}

	wins := 0
	for _, s := range starts {
		if s.Won() {
			wins++
		}
	}
	return float64(wins) / float64(len(starts)), nil
}

func (h formMetricsHandler) PlaceRate(horseID string, before time.Time, lastN int) (float64, error) {
	starts, err := h.finishedStarts(horseID, before, lastN)
	if err != nil {
		return 0, err
	}
	if len(starts) == 0 {
		return 0, missingData("%s has no finished starts before %v", horseID, before)
	}

	placed := 0
	for _, s := range starts {
		if s.Placed() {
			placed++
		}
	}
	return float64(placed) / float64(len(starts)), nil
}

func (h formMetricsHandler) AvgFinishPosition(horseID string, before time.Time, lastN int) (float64, error) {
	starts, err := h.finishedStarts(horseID, before, lastN)
	if err != nil {
		return 0, err
	}
	if len(starts) == 0 {
		return 0, missingData("%s has no finished starts before %v", horseID, before)
	}

	positions := make([]float64, 0, len(starts))
	for _, s := range starts {
		positions = append(positions, float64(*s.FinishPosition))
	}
	return stats.Mean(positions)
}

func (h formMetricsHandler) DaysSinceLastStart(horseID string, before time.Time) (float64, error) {
	starts, err := h.HistoryRepository.ListByHorse(horseID, before, 1)
	if err != nil {
		return 0, err
	}
	if len(starts) == 0 {
		return 0, missingData("%s has no starts before %v", horseID, before)
	}

	return before.Sub(starts[0].PostTime).Hours() / 24, nil
}

// ClassDelta is the class movement versus the last start: positive means the
// horse is stepping up in class today. Classes are compared on their numeric
// grade; non-numeric classes yield missing data.
func (h formMetricsHandler) ClassDelta(horseID string, before time.Time, currentClass *string) (float64, error) {
	current, ok := classGrade(currentClass)
	if !ok {
		return 0, missingData("current class is not graded")
	}

	starts, err := h.HistoryRepository.ListByHorse(horseID, before, 1)
	if err != nil {
		return 0, err
	}
	if len(starts) == 0 {
		return 0, missingData("%s has no starts before %v", horseID, before)
	}
	last, ok := classGrade(starts[0].Class)
	if !ok {
		return 0, missingData("last start class is not graded")
	}

	// lower grade number is better company, so stepping up is negative delta
	// on the raw grade; flip it so "up in class" is positive
	return last - current, nil
}

func (h formMetricsHandler) ComboWinRate(jockeyID, trainerID string, before time.Time, lastN int) (float64, error) {
	starts, err := h.HistoryRepository.ListByCombo(jockeyID, trainerID, before, lastN)
	if err != nil {
		return 0, err
	}

	finished := 0
	wins := 0
	for _, s := range starts {
		if s.Finished() {
			finished++
			if s.Won() {
				wins++
			}
		}
	}
	if finished == 0 {
		return 0, missingData("jockey %s / trainer %s have no finished starts before %v", jockeyID, trainerID, before)
	}
	return float64(wins) / float64(finished), nil
}

// AvgSpeedRating proxies pace from historical finish times, normalized to
// meters per second so starts at different distances are comparable. Scaled
// by 10 to land in a familiar 0-100ish band.
func (h formMetricsHandler) AvgSpeedRating(horseID string, before time.Time, lastN int) (float64, error) {
	ratings, err := h.speedRatings(horseID, before, lastN)
	if err != nil {
		return 0, err
	}
	return stats.Mean(ratings)
}

func (h formMetricsHandler) BestSpeedRating(horseID string, before time.Time, lastN int) (float64, error) {
	ratings, err := h.speedRatings(horseID, before, lastN)
	if err != nil {
		return 0, err
	}
	return stats.Max(ratings)
}

func (h formMetricsHandler) speedRatings(horseID string, before time.Time, lastN int) ([]float64, error) {
	starts, err := h.finishedStarts(horseID, before, lastN)
	if err != nil {
		return nil, err
	}

	ratings := []float64{}
	for _, s := range starts {
		if s.FinishTimeSecs == nil || *s.FinishTimeSecs <= 0 || s.DistanceMeters <= 0 {
			continue
		}
		ratings = append(ratings, 10*s.DistanceMeters / *s.FinishTimeSecs)
	}
	if len(ratings) == 0 {
		return nil, missingData("%s has no timed starts before %v", horseID, before)
	}
	return ratings, nil
}
