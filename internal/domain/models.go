package domain

import "time"

// OptionsPerQuestion is the fixed number of choices every question carries.
const OptionsPerQuestion = 4

// Unanswered marks a question the respondent has not answered yet.
const Unanswered = -1

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Result is one completed attempt at a quiz.
type Result struct {
	ID             string    `json:"id"`
	QuizID         string    `json:"quizId"`
	UserName       string    `json:"userName"`
	Answers        []int     `json:"answers"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	TimeElapsed    int       `json:"timeElapsed"` // seconds
	SubmittedAt    time.Time `json:"submittedAt"`
}

// Percent returns the rounded share of correct answers for this result.
func (r Result) Percent() int {
	return RoundPercent(r.Score, r.TotalQuestions)
}

// Badge classifies the result against its own question snapshot.
func (r Result) Badge() Badge {
	return ClassifyBadge(r.Score, r.TotalQuestions)
}

// QuizSummary is the list view of a quiz with its aggregated attempts.
type QuizSummary struct {
	Quiz                Quiz `json:"quiz"`
	Participants        int  `json:"participants"`
	AverageScorePercent int  `json:"averageScorePercent"`
}

// Stats aggregates every result of a quiz.
type Stats struct {
	Participants        int `json:"participants"`
	AverageScorePercent int `json:"averageScorePercent"`
	AverageTimeSeconds  int `json:"averageTimeSeconds"`
	BestScore           int `json:"bestScore"`
}

// LeaderboardEntry is one ranked result.
type LeaderboardEntry struct {
	Rank    int    `json:"rank"`
	Result  Result `json:"result"`
	Percent int    `json:"percent"`
	Badge   Badge  `json:"badge"`
}

// Leaderboard captures the ordered results for a quiz.
type Leaderboard struct {
	QuizID         string             `json:"quizId"`
	QuizTitle      string             `json:"quizTitle"`
	TotalQuestions int                `json:"totalQuestions"`
	Entries        []LeaderboardEntry `json:"entries"`
	Stats          Stats              `json:"stats"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// Attempt is an in-progress quiz attempt tracked by the server.
type Attempt struct {
	ID        string    `json:"id"`
	QuizID    string    `json:"quizId"`
	UserName  string    `json:"userName"`
	StartedAt time.Time `json:"startedAt"`
	Elapsed   int       `json:"elapsed"` // seconds counted so far
}
