package domain

import "strings"

// NormalizeQuiz trims every user-entered text field.
func NormalizeQuiz(q Quiz) Quiz {
	q.Title = strings.TrimSpace(q.Title)
	q.Description = strings.TrimSpace(q.Description)
	questions := make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.ID = strings.TrimSpace(question.ID)
		question.Text = strings.TrimSpace(question.Text)
		options := make([]string, len(question.Options))
		for j, opt := range question.Options {
			options[j] = strings.TrimSpace(opt)
		}
		question.Options = options
		questions[i] = question
	}
	q.Questions = questions
	return q
}

// ValidateQuiz checks a quiz in the same order the creator form does:
// title, question count, then each question's text and options.
// Question ids are only checked for uniqueness when set.
func ValidateQuiz(q Quiz) error {
	if strings.TrimSpace(q.Title) == "" {
		return invalid(ErrEmptyTitle)
	}
	if len(q.Questions) == 0 {
		return invalid(ErrNoQuestions)
	}

	seen := make(map[string]struct{}, len(q.Questions))
	for i, question := range q.Questions {
		if strings.TrimSpace(question.Text) == "" {
			return invalidAt(ErrEmptyQuestionText, i)
		}
		if len(question.Options) != OptionsPerQuestion {
			return invalidAt(ErrWrongOptionCount, i)
		}
		for _, opt := range question.Options {
			if strings.TrimSpace(opt) == "" {
				return invalidAt(ErrEmptyOption, i)
			}
		}
		if question.CorrectOptionIndex < 0 || question.CorrectOptionIndex >= len(question.Options) {
			return invalidAt(ErrCorrectOptionOutOfRange, i)
		}
		if question.ID == "" {
			continue
		}
		if _, dup := seen[question.ID]; dup {
			return invalidAt(ErrDuplicateQuestionID, i)
		}
		seen[question.ID] = struct{}{}
	}
	return nil
}

// ValidateUserName rejects blank respondent names.
func ValidateUserName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid(ErrEmptyUserName)
	}
	return nil
}

// ValidateAnswers checks a submitted answer vector against the quiz: one
// answer per question, none left unanswered, each pointing at an option.
func ValidateAnswers(q Quiz, answers []int) error {
	if len(answers) != len(q.Questions) {
		return invalid(ErrAnswerCountMismatch)
	}
	for i, a := range answers {
		if a == Unanswered {
			return invalidAt(ErrUnansweredQuestion, i)
		}
		if a < 0 || a >= len(q.Questions[i].Options) {
			return invalidAt(ErrAnswerOutOfRange, i)
		}
	}
	return nil
}

// ValidateElapsed rejects negative durations.
func ValidateElapsed(seconds int) error {
	if seconds < 0 {
		return invalid(ErrNegativeElapsed)
	}
	return nil
}

// PublicQuiz returns a copy safe to hand to respondents: correct answers are
// replaced with Unanswered.
func PublicQuiz(q Quiz) Quiz {
	questions := make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]string(nil), question.Options...)
		question.CorrectOptionIndex = Unanswered
		questions[i] = question
	}
	q.Questions = questions
	return q
}
