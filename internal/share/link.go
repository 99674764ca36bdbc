package share

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// QueryParam is the query parameter carrying the quiz id in a share link.
const QueryParam = "quiz"

var (
	// ErrMissingQuizParam is returned when a link has no usable quiz parameter.
	ErrMissingQuizParam = errors.New("share link has no quiz parameter")
	// ErrInvalidOrigin is returned when the origin is not an absolute http(s) URL.
	ErrInvalidOrigin = errors.New("origin must be an absolute http(s) url")
)

// BuildLink returns <origin>/?quiz=<quizID>.
func BuildLink(origin, quizID string) (string, error) {
	if strings.TrimSpace(quizID) == "" {
		return "", ErrMissingQuizParam
	}
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(origin), "/"))
	if err != nil {
		return "", fmt.Errorf("parse origin: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidOrigin
	}
	return u.Scheme + "://" + u.Host + u.Path + "/?" + QueryParam + "=" + url.QueryEscape(quizID), nil
}

// ParseLink extracts the quiz id from a share link.
func ParseLink(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse link: %w", err)
	}
	return QuizIDFromQuery(u.Query())
}

// QuizIDFromQuery reads the quiz id out of already parsed query values.
func QuizIDFromQuery(values url.Values) (string, error) {
	id := strings.TrimSpace(values.Get(QueryParam))
	if id == "" {
		return "", ErrMissingQuizParam
	}
	return id, nil
}

// Filename is the download name for a quiz's QR image.
func Filename(quizID string) string {
	return "quiz-" + quizID + "-qr-code.png"
}
