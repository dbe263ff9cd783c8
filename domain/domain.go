// Package domain holds the disc-golf entities shared by the API server and the
// companion client, together with the validation rules both sides enforce.
package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a single rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Course is a disc-golf course with one par value per hole.
type Course struct {
	ID            string
	Name          string
	Location      string
	Description   string
	NumberOfHoles int
	ParValues     []int
}

// TotalPar sums the course par values.
func (c Course) TotalPar() int { return sum(c.ParValues) }

// Player is somebody who plays rounds.
type Player struct {
	ID         string
	Name       string
	PDGANumber *int
	Email      string
}

// Round is one play-through of a course by a player. The totals are derived
// from the scores and the course pars by NewRound.
type Round struct {
	ID         string
	Player     Player
	Course     Course
	Scores     []int
	Date       time.Time
	TotalScore int
	TotalPar   int
	ParScore   int
}

// NewRound builds a round and fills in its derived totals.
func NewRound(id string, player Player, course Course, scores []int, date time.Time) (Round, error) {
	if err := ValidateScores(course.NumberOfHoles, scores); err != nil {
		return Round{}, err
	}
	totalPar := course.TotalPar()
	totalScore := sum(scores)
	return Round{
		ID:         id,
		Player:     player,
		Course:     course,
		Scores:     append([]int(nil), scores...),
		Date:       date,
		TotalScore: totalScore,
		TotalPar:   totalPar,
		ParScore:   totalScore - totalPar,
	}, nil
}

// RestoreRound rebuilds a round that was already accepted by a store. The
// scores are not re-validated, since the course may have changed since.
func RestoreRound(id string, player Player, course Course, scores []int, date time.Time) Round {
	totalPar := course.TotalPar()
	totalScore := sum(scores)
	return Round{
		ID:         id,
		Player:     player,
		Course:     course,
		Scores:     append([]int(nil), scores...),
		Date:       date,
		TotalScore: totalScore,
		TotalPar:   totalPar,
		ParScore:   totalScore - totalPar,
	}
}

// ValidateCourse checks the fields a stored course must satisfy.
func ValidateCourse(name string, numberOfHoles int, parValues []int) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "name is required")
	}
	if numberOfHoles <= 0 {
		return invalid("numberOfHoles", "numberOfHoles must be a positive integer")
	}
	if len(parValues) != numberOfHoles {
		return invalid("parValues", "The number of par values must match numberOfHoles.")
	}
	return nil
}

// ValidateScores checks a score card against the hole count of its course.
func ValidateScores(numberOfHoles int, scores []int) error {
	if len(scores) != numberOfHoles {
		return invalid("scores", "Scores array must contain %d scores, but received %d.", numberOfHoles, len(scores))
	}
	for _, s := range scores {
		if s <= 0 {
			return invalid("scores", "All scores must be positive integers.")
		}
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lower-cases an email and checks its shape.
// The empty string is accepted as "no email".
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", nil
	}
	if !emailPattern.MatchString(email) {
		return "", invalid("email", "%s is not a valid email", email)
	}
	return email, nil
}

// ValidatePlayer checks a player's name and returns the normalised email.
func ValidatePlayer(name, email string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", invalid("name", "name is required")
	}
	return NormalizeEmail(email)
}

// FormatParScore renders a par score the way score cards do: E, +2, -1.
func FormatParScore(parScore int) string {
	switch {
	case parScore == 0:
		return "E"
	case parScore > 0:
		return fmt.Sprintf("+%d", parScore)
	default:
		return fmt.Sprintf("%d", parScore)
	}
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
