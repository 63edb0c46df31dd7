// Package store is the persistence layer between the database and the pure league
// packages. It loads rows through GORM and hands back the plain values that pairing and
// scoring work on, and it writes back what those packages decide.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/trentd187/golf-league-matchups/internal/handicap"
	"github.com/trentd187/golf-league-matchups/internal/models"
)

var (
	// ErrNotFound is returned when a league, week, match or course does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would break a league rule, such as a team
	// playing twice in one week.
	ErrConflict = errors.New("conflict")
	// ErrInvalid is returned for requests that reference rows outside their league or match.
	ErrInvalid = errors.New("invalid")
)

// HoleSource supplies a course's holes. Store implements it directly; the cache package
// wraps it.
type HoleSource interface {
	CourseHoles(ctx context.Context, courseID int64) ([]handicap.Hole, error)
}

// Store wraps a GORM handle. It is safe for concurrent use.
type Store struct {
	db *gorm.DB
}

var _ HoleSource = (*Store)(nil)

// New returns a Store using db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for callers that need raw access, such as the
// authentication middleware's user sync.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CourseHoles returns a course's holes in hole-number order.
func (s *Store) CourseHoles(ctx context.Context, courseID int64) ([]handicap.Hole, error) {
	var course models.Course
	if err := s.db.WithContext(ctx).Select("id").First(&course, courseID).Error; err != nil {
		return nil, notFound(err, "course %d", courseID)
	}

	var rows []models.Hole
	if err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("number").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load holes for course %d: %w", courseID, err)
	}

	holes := make([]handicap.Hole, len(rows))
	for i, h := range rows {
		holes[i] = handicap.Hole{
			ID:         h.ID,
			Number:     h.Number,
			Par:        h.Par,
			Yards:      h.Yards,
			Difficulty: h.Handicap,
		}
	}
	return holes, nil
}

// notFound maps gorm.ErrRecordNotFound to ErrNotFound and wraps anything else.
func notFound(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
