package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound is returned when an attempt is unknown or already finished.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAlreadyExists is returned when a record with the same id was already written.
	ErrAlreadyExists = errors.New("record already exists")
)

// Validation failures. They are always wrapped in a ValidationError.
var (
	ErrEmptyTitle              = errors.New("please enter a quiz title")
	ErrNoQuestions             = errors.New("please add at least one question")
	ErrEmptyQuestionText       = errors.New("all questions must have text")
	ErrWrongOptionCount        = errors.New("every question needs exactly 4 options")
	ErrEmptyOption             = errors.New("all answer options must be filled")
	ErrCorrectOptionOutOfRange = errors.New("correct option must reference an existing option")
	ErrDuplicateQuestionID     = errors.New("question ids must be unique within a quiz")
	ErrEmptyUserName           = errors.New("please enter your name")
	ErrAnswerCountMismatch     = errors.New("answer count does not match question count")
	ErrUnansweredQuestion      = errors.New("all questions must be answered")
	ErrAnswerOutOfRange        = errors.New("answer references an unknown option")
	ErrNegativeElapsed         = errors.New("elapsed time cannot be negative")
)

// ValidationError reports invalid user input. Index is the offending
// question position, or -1 when the error is not tied to a question.
type ValidationError struct {
	Err   error
	Index int
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error) error {
	return &ValidationError{Err: err, Index: -1}
}

func invalidAt(err error, index int) error {
	return &ValidationError{Err: err, Index: index}
}

// IsValidation reports whether err stems from rejected user input.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
