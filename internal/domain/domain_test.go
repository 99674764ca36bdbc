package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizshare/internal/domain"
)

func TestClassifyBadgeThresholds(t *testing.T) {
	cases := []struct {
		name  string
		score int
		total int
		want  domain.Badge
	}{
		{"exactly 90", 9, 10, domain.BadgeExcellent},
		{"exactly 89", 89, 100, domain.BadgeGood},
		{"exactly 70", 7, 10, domain.BadgeGood},
		{"exactly 69", 69, 100, domain.BadgeAverage},
		{"exactly 50", 5, 10, domain.BadgeAverage},
		{"exactly 49", 49, 100, domain.BadgeNeedsImprovement},
		{"perfect", 4, 4, domain.BadgeExcellent},
		{"zero", 0, 4, domain.BadgeNeedsImprovement},
		{"no questions", 0, 0, domain.BadgeNeedsImprovement},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.ClassifyBadge(tc.score, tc.total))
		})
	}
}

func TestRoundPercent(t *testing.T) {
	assert.Equal(t, 67, domain.RoundPercent(2, 3))
	assert.Equal(t, 33, domain.RoundPercent(1, 3))
	assert.Equal(t, 50, domain.RoundPercent(1, 2))
	assert.Equal(t, 0, domain.RoundPercent(5, 0))
}

func TestValidateQuiz(t *testing.T) {
	valid := func() domain.Quiz {
		return domain.Quiz{
			Title: "Capitals",
			Questions: []domain.Question{
				{ID: "q1", Text: "Capital of France?", Options: []string{"Paris", "Rome", "Oslo", "Bern"}, CorrectOptionIndex: 0},
			},
		}
	}

	require.NoError(t, domain.ValidateQuiz(valid()))

	cases := []struct {
		name   string
		mutate func(*domain.Quiz)
		want   error
	}{
		{"empty title", func(q *domain.Quiz) { q.Title = "   " }, domain.ErrEmptyTitle},
		{"no questions", func(q *domain.Quiz) { q.Questions = nil }, domain.ErrNoQuestions},
		{"empty question text", func(q *domain.Quiz) { q.Questions[0].Text = "" }, domain.ErrEmptyQuestionText},
		{"three options", func(q *domain.Quiz) { q.Questions[0].Options = q.Questions[0].Options[:3] }, domain.ErrWrongOptionCount},
		{"empty option", func(q *domain.Quiz) { q.Questions[0].Options[2] = " " }, domain.ErrEmptyOption},
		{"correct index too high", func(q *domain.Quiz) { q.Questions[0].CorrectOptionIndex = 4 }, domain.ErrCorrectOptionOutOfRange},
		{"correct index negative", func(q *domain.Quiz) { q.Questions[0].CorrectOptionIndex = -1 }, domain.ErrCorrectOptionOutOfRange},
		{"duplicate ids", func(q *domain.Quiz) { q.Questions = append(q.Questions, q.Questions[0]) }, domain.ErrDuplicateQuestionID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := valid()
			tc.mutate(&q)
			err := domain.ValidateQuiz(q)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestValidateQuizReportsQuestionIndex(t *testing.T) {
	q := domain.Quiz{
		Title: "Two",
		Questions: []domain.Question{
			{Text: "ok", Options: []string{"a", "b", "c", "d"}},
			{Text: "bad", Options: []string{"a", "", "c", "d"}},
		},
	}
	var verr *domain.ValidationError
	require.ErrorAs(t, domain.ValidateQuiz(q), &verr)
	assert.Equal(t, 1, verr.Index)
}

func TestValidateAnswers(t *testing.T) {
	q := domain.Quiz{Questions: []domain.Question{
		{Options: []string{"a", "b", "c", "d"}},
		{Options: []string{"a", "b", "c", "d"}},
	}}

	require.NoError(t, domain.ValidateAnswers(q, []int{0, 3}))
	assert.ErrorIs(t, domain.ValidateAnswers(q, []int{0}), domain.ErrAnswerCountMismatch)
	assert.ErrorIs(t, domain.ValidateAnswers(q, []int{0, domain.Unanswered}), domain.ErrUnansweredQuestion)
	assert.ErrorIs(t, domain.ValidateAnswers(q, []int{4, 0}), domain.ErrAnswerOutOfRange)
}

func TestNormalizeQuizTrimsText(t *testing.T) {
	q := domain.NormalizeQuiz(domain.Quiz{
		Title:       "  Title ",
		Description: " desc ",
		Questions:   []domain.Question{{Text: " Q ", Options: []string{" a", "b ", " c ", "d"}}},
	})
	assert.Equal(t, "Title", q.Title)
	assert.Equal(t, "desc", q.Description)
	assert.Equal(t, "Q", q.Questions[0].Text)
	assert.Equal(t, []string{"a", "b", "c", "d"}, q.Questions[0].Options)
}

func TestPublicQuizHidesAnswers(t *testing.T) {
	q := domain.Quiz{Questions: []domain.Question{{Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 2}}}
	pub := domain.PublicQuiz(q)
	assert.Equal(t, domain.Unanswered, pub.Questions[0].CorrectOptionIndex)
	assert.Equal(t, 2, q.Questions[0].CorrectOptionIndex, "input must not be mutated")
}
