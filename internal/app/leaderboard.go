package app

import (
	"math"
	"sort"
	"time"

	"quizshare/internal/domain"
)

// Rank returns a copy of results ordered by score (highest first), then by
// elapsed time (fastest first). Exact ties keep their input order.
func Rank(results []domain.Result) []domain.Result {
	ranked := make([]domain.Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].TimeElapsed < ranked[j].TimeElapsed
	})
	return ranked
}

// Summarize computes aggregate statistics over every result. totalQuestions
// is the quiz length used for the average percentage. An empty set yields
// zero values instead of dividing by zero.
func Summarize(results []domain.Result, totalQuestions int) domain.Stats {
	n := len(results)
	if n == 0 {
		return domain.Stats{}
	}

	var scoreSum, timeSum int
	best := results[0].Score
	for _, r := range results {
		scoreSum += r.Score
		timeSum += r.TimeElapsed
		if r.Score > best {
			best = r.Score
		}
	}

	return domain.Stats{
		Participants:        n,
		AverageScorePercent: domain.RoundPercent(scoreSum, n*totalQuestions),
		AverageTimeSeconds:  int(math.Round(float64(timeSum) / float64(n))),
		BestScore:           best,
	}
}

// BuildLeaderboard ranks results for quiz and attaches the aggregates.
func BuildLeaderboard(quiz domain.Quiz, results []domain.Result, now time.Time) domain.Leaderboard {
	ranked := Rank(results)
	entries := make([]domain.LeaderboardEntry, len(ranked))
	for i, r := range ranked {
		entries[i] = domain.LeaderboardEntry{
			Rank:    i + 1,
			Result:  r,
			Percent: r.Percent(),
			Badge:   r.Badge(),
		}
	}

	return domain.Leaderboard{
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		TotalQuestions: len(quiz.Questions),
		Entries:        entries,
		Stats:          Summarize(results, len(quiz.Questions)),
		UpdatedAt:      now,
	}
}
