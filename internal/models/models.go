// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
// The struct field tags tell GORM how to handle each field: column type, constraints,
// defaults and relationships.
//
// The data model represents a weekly team golf league:
//   - A League has Teams, and each Team has an ordered roster of Players
//   - The League's season is split into Weeks; each Week holds Matches between two Teams
//   - A Match is played on a Course, whose Holes carry par and a handicap (difficulty) value
//   - Scores record the strokes one player took on one hole in one match
//
// League entities use integer ids because the pairing optimizer derives seeds from them
// and the canonical pair key ("3-7") is built from them. Users keep UUIDs.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Enums ---

// UserRole represents a user's global permission level across the platform.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"   // Full access to every league
	UserRoleManager UserRole = "manager" // Can create leagues and run their weeks
	UserRoleUser    UserRole = "user"    // Player or scorer: can enter scores
)

// LeagueStatus tracks the lifecycle of a league season.
type LeagueStatus string

const (
	LeagueStatusUpcoming  LeagueStatus = "upcoming"
	LeagueStatusActive    LeagueStatus = "active"
	LeagueStatusCompleted LeagueStatus = "completed"
)

// --- Models ---

// User represents a registered person. Users are created on their first authenticated
// request; Subject is the "sub" claim of their token.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	// uniqueIndex makes GORM (and the migration) create a unique index, so two rows can
	// never claim the same token identity.
	Subject     string    `gorm:"uniqueIndex;not null"`
	DisplayName string    `gorm:"not null"`
	Email       string    `gorm:"not null;default:''"`
	Role        UserRole  `gorm:"type:varchar(16);not null;default:'user'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BeforeCreate assigns a UUID in Go so the same code works on Postgres and SQLite.
// GORM calls hooks with this exact name automatically before every INSERT; the
// pointer receiver lets it modify the struct being saved.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// League is one season of weekly team play.
type League struct {
	ID        int64        `gorm:"primaryKey"`
	Name      string       `gorm:"not null"`
	Status    LeagueStatus `gorm:"type:varchar(16);not null;default:'upcoming'"`
	CreatedBy *uuid.UUID   `gorm:"type:uuid"` // The manager who created the league; nullable for imported leagues
	// Creator is filled only when a query asks for it with Preload("Creator").
	Creator   *User        `gorm:"foreignKey:CreatedBy"`
	CreatedAt time.Time
	UpdatedAt time.Time
	// Has-many relationships: GORM joins them through the LeagueID column on the child
	// table. Like Creator they stay empty unless preloaded.
	Teams     []Team `gorm:"foreignKey:LeagueID"`
	Weeks     []Week `gorm:"foreignKey:LeagueID"`
}

// Player is a golfer. Handicap is nullable: unrated players play from scratch.
type Player struct {
	ID        int64    `gorm:"primaryKey"`
	Name      string   `gorm:"not null"`
	// A pointer type maps to a nullable column: nil is stored as NULL, which is how
	// "no handicap yet" differs from a handicap of 0.
	Handicap  *float64 `gorm:"type:decimal(4,1)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Team belongs to a league. Roster order matters: the first player on each side
// plays the other team's first player, and so on.
type Team struct {
	ID        int64        `gorm:"primaryKey"`
	LeagueID  int64        `gorm:"not null;index"`
	Name      string       `gorm:"not null"`
	CreatedAt time.Time
	Roster    []TeamPlayer `gorm:"foreignKey:TeamID"`
}

// TeamPlayer places a Player on a Team at a lineup position (0 = first).
// Two primaryKey tags make a composite key: a player is on a team at most once.
type TeamPlayer struct {
	TeamID   int64  `gorm:"primaryKey"`
	PlayerID int64  `gorm:"primaryKey"`
	Position int    `gorm:"not null;default:0"`
	Player   Player `gorm:"foreignKey:PlayerID"`
}

// Course is a golf course. Holes are ordered by Number.
type Course struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	City      string `gorm:"not null;default:''"`
	State     string `gorm:"not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Holes     []Hole `gorm:"foreignKey:CourseID"`
}

// Hole is one hole of a course. Handicap is the scorecard's stroke-allocation value:
// 1 is the hardest hole. Nullable because some courses never publish it.
type Hole struct {
	ID       int64 `gorm:"primaryKey"`
	// Sharing the index name idx_course_hole between two fields builds one unique index
	// over both columns, so a course cannot have two hole 7s.
	CourseID int64 `gorm:"not null;uniqueIndex:idx_course_hole"`
	Number   int   `gorm:"not null;uniqueIndex:idx_course_hole"`
	Par      int   `gorm:"not null"`
	Yards    *int
	Handicap *int
}

// Week is one week of a league season.
type Week struct {
	ID        int64     `gorm:"primaryKey"`
	LeagueID  int64     `gorm:"not null;uniqueIndex:idx_league_week"`
	Number    int       `gorm:"not null;uniqueIndex:idx_league_week"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// Match is a committed pairing between two teams in a week. The point columns are
// the last computed result, refreshed every time a score changes.
type Match struct {
	ID          int64     `gorm:"primaryKey"`
	LeagueID    int64     `gorm:"not null;index"`
	WeekID      int64     `gorm:"not null;index"`
	Week        Week      `gorm:"foreignKey:WeekID"`
	CourseID    int64     `gorm:"not null"`
	HomeTeamID  int64     `gorm:"not null"`
	HomeTeam    Team      `gorm:"foreignKey:HomeTeamID"`
	AwayTeamID  int64     `gorm:"not null"`
	AwayTeam    Team      `gorm:"foreignKey:AwayTeamID"`
	MatchDate   time.Time `gorm:"not null"`
	IsCompleted bool      `gorm:"not null;default:false"`
	HomePoints  *int
	AwayPoints  *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MatchPlayer is a player in a specific match's lineup. When a match has any of
// these rows they replace the team rosters, which is how substitutes play.
// Handicap is the value used for this match; nil falls back to the player's own.
type MatchPlayer struct {
	MatchID  int64    `gorm:"primaryKey"`
	PlayerID int64    `gorm:"primaryKey"`
	TeamID   int64    `gorm:"not null"`
	Position int      `gorm:"not null;default:0"`
	Handicap *float64 `gorm:"type:decimal(4,1)"`
	Player   Player   `gorm:"foreignKey:PlayerID"`
}

// Score is the strokes one player took on one hole of one match.
// The three-column unique index is what score entry upserts against.
type Score struct {
	ID        int64      `gorm:"primaryKey"`
	MatchID   int64      `gorm:"not null;uniqueIndex:idx_match_player_hole"`
	PlayerID  int64      `gorm:"not null;uniqueIndex:idx_match_player_hole"`
	HoleID    int64      `gorm:"not null;uniqueIndex:idx_match_player_hole"`
	Strokes   int        `gorm:"not null"`
	EnteredBy *uuid.UUID `gorm:"type:uuid"`
	EnteredAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

// All lists every model, in dependency order, for AutoMigrate in tests and tooling.
func All() []any {
	return []any{
		&User{}, &League{}, &Player{}, &Team{}, &TeamPlayer{},
		&Course{}, &Hole{}, &Week{}, &Match{}, &MatchPlayer{}, &Score{},
	}
}
