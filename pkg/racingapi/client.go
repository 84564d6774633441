package racingapi

import (
	"encoding/json"
	"fmt"
	"formrank/internal/logger"
	"io"
	"net/http"
	"time"
)

const DefaultBaseUrl = "https://api.racingfeed.io"

type Client struct {
	HttpClient *http.Client
	BaseUrl    string
	ApiKey     string
}

// CardRunner is one entry on a provider race card. The provider is not
// consistent across tracks: some feeds send decimal morning line odds, some
// send fractional strings, and stall draws are frequently absent.
type CardRunner struct {
	RunnerID           string   `json:"runner_id"`
	HorseID            string   `json:"horse_id"`
	JockeyID           *string  `json:"jockey_id"`
	TrainerID          *string  `json:"trainer_id"`
	ProgramNumber      int      `json:"program_number"`
	Draw               *int     `json:"draw"`
	WeightKg           *float64 `json:"weight_kg"`
	WeightLbs          *float64 `json:"weight_lbs"`
	MorningLineDecimal *float64 `json:"morning_line_decimal"`
	MorningLine        string   `json:"morning_line"`
}

type RaceCard struct {
	RaceID           string       `json:"race_id"`
	Track            string       `json:"track"`
	Course           string       `json:"course"`
	RaceNumber       int          `json:"race_number"`
	PostTime         string       `json:"post_time"`
	DistanceMeters   float64      `json:"distance_meters"`
	DistanceFurlongs float64      `json:"distance_furlongs"`
	Surface          *string      `json:"surface"`
	Class            *string      `json:"class"`
	Country          *string      `json:"country"`
	Runners          []CardRunner `json:"runners"`
}

type RunnerResult struct {
	RunnerID       string   `json:"runner_id"`
	FinishPosition *int     `json:"finish_position"`
	MarginLengths  *float64 `json:"margin_lengths"`
	FinalOdds      *float64 `json:"final_odds"`
	FinishTimeSecs *float64 `json:"finish_time_secs"`
	Status         string   `json:"status"`
}

type ResultSheet struct {
	RaceID  string         `json:"race_id"`
	Results []RunnerResult `json:"results"`
}

type cardsResponse struct {
	Cards []RaceCard `json:"cards"`
}

type resultsResponse struct {
	Sheets []ResultSheet `json:"results"`
}

func (c Client) GetDailyCards(day time.Time) ([]RaceCard, error) {
	out := cardsResponse{}
	err := c.get(fmt.Sprintf("%s/v1/cards?date=%s", c.BaseUrl, day.Format("2006-01-02")), &out)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cards: %w", err)
	}
	return out.Cards, nil
}

func (c Client) GetDailyResults(day time.Time) ([]ResultSheet, error) {
	out := resultsResponse{}
	err := c.get(fmt.Sprintf("%s/v1/results?date=%s", c.BaseUrl, day.Format("2006-01-02")), &out)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results: %w", err)
	}
	return out.Sheets, nil
}

func (c Client) get(url string, dest interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Api-Key", c.ApiKey)
	response, err := c.HttpClient.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}

	if response.StatusCode == 429 {
		logger.Debug("hit rate limit. sleeping...")
		time.Sleep(60 * time.Second)
		return c.get(url, dest)
	} else if response.StatusCode != 200 {
		type errResponse struct {
			Error string `json:"error"`
		}
		errJson := errResponse{}
		err = json.Unmarshal(responseBytes, &errJson)
		if err != nil {
			return fmt.Errorf("received status code %d and failed to read error: %w", response.StatusCode, err)
		}
		return fmt.Errorf("failed with status code %d: %s", response.StatusCode, errJson.Error)
	}

	return json.Unmarshal(responseBytes, dest)
}
