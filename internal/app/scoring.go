package app

import "quizshare/internal/domain"

// Score counts the answers matching each question's correct option. Only
// positions present in both the quiz and the answer vector are compared, so a
// short or long vector never errors. Unanswered positions score nothing.
func Score(quiz domain.Quiz, answers []int) int {
	n := min(len(quiz.Questions), len(answers))
	score := 0
	for i := 0; i < n; i++ {
		if answers[i] == quiz.Questions[i].CorrectOptionIndex {
			score++
		}
	}
	return score
}
