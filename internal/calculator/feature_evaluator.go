package calculator

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/maja42/goval"
)

// RunnerContext is everything an expression feature may see about the runner
// being scored. The asOf bound travels with the context so every metric call
// inside an expression stays behind the leakage boundary.
type RunnerContext struct {
	HorseID      string
	JockeyID     *string
	TrainerID    *string
	CurrentClass *string
	AsOf         time.Time
}

// ExpressionPriors supply the fallback value per metric family when a runner
// has no history; expressions stay total functions over sparse runners.
type ExpressionPriors struct {
	WinRate     float64
	PlaceRate   float64
	FinishPos   float64
	SpeedRating float64
}

func constructFunctionMap(
	h FormMetricCalculations,
	runner RunnerContext,
	priors ExpressionPriors,
) map[string]goval.ExpressionFunction {
	withPrior := func(v float64, err error, prior float64) (interface{}, error) {
		if err != nil && errors.As(err, &FormMetricsMissingDataError{}) {
			return prior, nil
		}
		if err != nil {
			return 0, err
		}
		return v, nil
	}
	lastN := func(args []interface{}, fnName string) (int, error) {
		if len(args) < 1 {
			return 0, fmt.Errorf("%s needs 1 arg, got %d", fnName, len(args))
		}
		n, ok := args[0].(int)
		if !ok {
			return 0, fmt.Errorf("%s arg must be an int", fnName)
		}
		return n, nil
	}

	return map[string]goval.ExpressionFunction{
		"careerStarts": func(args ...interface{}) (interface{}, error) {
			v, err := h.CareerStarts(runner.HorseID, runner.AsOf)
			return withPrior(v, err, 0)
		},
		"winRate": func(args ...interface{}) (interface{}, error) {
			n, err := lastN(args, "winRate")
			if err != nil {
				return 0, err
			}
			v, err := h.WinRate(runner.HorseID, runner.AsOf, n)
			return withPrior(v, err, priors.WinRate)
		},
		"placeRate": func(args ...interface{}) (interface{}, error) {
			n, err := lastN(args, "placeRate")
			if err != nil {
				return 0, err
			}
			v, err := h.PlaceRate(runner.HorseID, runner.AsOf, n)
			return withPrior(v, err, priors.PlaceRate)
		},
		"avgFinish": func(args ...interface{}) (interface{}, error) {
			n, err := lastN(args, "avgFinish")
			if err != nil {
				return 0, err
			}
			v, err := h.AvgFinishPosition(runner.HorseID, runner.AsOf, n)
			return withPrior(v, err, priors.FinishPos)
		},
		"daysSince": func(args ...interface{}) (interface{}, error) {
			v, err := h.DaysSinceLastStart(runner.HorseID, runner.AsOf)
			return withPrior(v, err, 365)
		},
		"classDelta": func(args ...interface{}) (interface{}, error) {
			v, err := h.ClassDelta(runner.HorseID, runner.AsOf, runner.CurrentClass)
			return withPrior(v, err, 0)
		},
		"comboWinRate": func(args ...interface{}) (interface{}, error) {
			n, err := lastN(args, "comboWinRate")
			if err != nil {
				return 0, err
			}
			if runner.JockeyID == nil || runner.TrainerID == nil {
				return priors.WinRate, nil
			}
			v, err := h.ComboWinRate(*runner.JockeyID, *runner.TrainerID, runner.AsOf, n)
			return withPrior(v, err, priors.WinRate)
		},
		"avgSpeed": func(args ...interface{}) (interface{}, error) {
			n, err := lastN(args, "avgSpeed")
			if err != nil {
				return 0, err
			}
			v, err := h.AvgSpeedRating(runner.HorseID, runner.AsOf, n)
			return withPrior(v, err, priors.SpeedRating)
		},
		"bestSpeed": func(args ...interface{}) (interface{}, error) {
			n, err := lastN(args, "bestSpeed")
			if err != nil {
				return 0, err
			}
			v, err := h.BestSpeedRating(runner.HorseID, runner.AsOf, n)
			return withPrior(v, err, priors.SpeedRating)
		},
	}
}

// EvaluateFeatureExpression evaluates one configured feature expression for
// one runner as of the leakage bound carried in the context.
func EvaluateFeatureExpression(
	expression string,
	formMetricsHandler FormMetricCalculations,
	runner RunnerContext,
	priors ExpressionPriors,
) (float64, error) {
	eval := goval.NewEvaluator()
	variables := map[string]interface{}{
		"asOfDate": runner.AsOf.Format("2006-01-02"),
	}

	functions := constructFunctionMap(formMetricsHandler, runner, priors)
	result, err := eval.Evaluate(expression, variables, functions)
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate feature expression: %w", err)
	}

	r, ok := toFloat(result)
	if !ok {
		return 0, fmt.Errorf("failed to convert expression result to float")
	} else if math.IsNaN(r) {
		return 0, fmt.Errorf("calculated NaN as expression result")
	} else if math.IsInf(r, 0) {
		return 0, fmt.Errorf("calculated infinity as expression result")
	}

	return r, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	}
	return 0, false
}

// HashFeatureExpression pins an expression's text into the feature schema
// hash so editing a configured expression invalidates stale artifacts.
func HashFeatureExpression(expression string) string {
	sum := sha256.Sum256([]byte(expression))
	return hex.EncodeToString(sum[:])[:32]
}
