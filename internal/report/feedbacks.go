package report

import (
	"context"
	"math"
)

type feedbackRecord struct {
	Rating    any      `json:"rating"`
	StoreID   string   `json:"store_id"`
	CreatedAt *isoDate `json:"created_at"`
}

// FeedbackAverage is the body of GET /api/feedbacks/average
type FeedbackAverage struct {
	AverageRating  float64 `json:"averageRating"`
	TotalFeedbacks int     `json:"totalFeedbacks"`
	Cached         bool    `json:"cached"`
}

type ratingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// FeedbackAverage averages numeric ratings, optionally for one store only.
// The average is rounded to two decimals.
func (s *Service) FeedbackAverage(ctx context.Context, storeID string, w Window) (FeedbackAverage, error) {
	summary, cached, err := cachedResult(ctx, s, FeedbacksFile, "average:"+storeID, w.Active(), func() (ratingSummary, error) {
		var feedbacks []feedbackRecord
		if err := s.readJSON(FeedbacksFile, &feedbacks); err != nil {
			return ratingSummary{}, err
		}

		sum, count := 0.0, 0
		for _, f := range feedbacks {
			if storeID != "" && f.StoreID != storeID {
				continue
			}
			if !w.Contains(f.CreatedAt.value()) {
				continue
			}
			rating, ok := f.Rating.(float64)
			if !ok || math.IsNaN(rating) || math.IsInf(rating, 0) {
				continue
			}
			sum += rating
			count++
		}

		if count == 0 {
			return ratingSummary{}, nil
		}
		return ratingSummary{Average: roundTo2(sum / float64(count)), Count: count}, nil
	})

	return FeedbackAverage{
		AverageRating:  summary.Average,
		TotalFeedbacks: summary.Count,
		Cached:         cached,
	}, err
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
