package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/golf-league-matchups/internal/models"
	"github.com/trentd187/golf-league-matchups/internal/store"
)

// LeagueResponse is what we send back for a league. A dedicated struct keeps the
// GORM model out of the JSON and carries computed counts.
type LeagueResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	CreatorName *string `json:"creator_name"` // null for leagues without a recorded creator
	TeamCount   int64   `json:"team_count"`
	WeekCount   int64   `json:"week_count"`
	CreatedAt   string  `json:"created_at"` // RFC 3339
}

// CreateLeagueRequest is the JSON body expected on POST /api/v1/leagues.
type CreateLeagueRequest struct {
	Name      string  `json:"name"`
	StartDate *string `json:"start_date"` // optional "YYYY-MM-DD"; first day of week 1
	Weeks     int     `json:"weeks"`      // number of weeks to create from start_date
}

// formatOptionalDate converts a *time.Time to a *string in "2006-01-02" format.
// Returns nil if the input is nil.
func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02")
	return &s
}

// parseOptionalDate parses an optional "YYYY-MM-DD" string. Nil or empty gives nil.
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	// Go layouts are written using the reference date Mon Jan 2 2006, so
	// "2006-01-02" means YYYY-MM-DD.
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func leagueResponse(l store.LeagueSummary) LeagueResponse {
	resp := LeagueResponse{
		ID:        l.ID,
		Name:      l.Name,
		Status:    string(l.Status),
		TeamCount: l.TeamCount,
		WeekCount: l.WeekCount,
		CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
	}
	if l.Creator != nil {
		resp.CreatorName = &l.Creator.DisplayName
	}
	return resp
}

// GetLeagues returns a handler for GET /api/v1/leagues.
// Optional query param: ?status=active (or upcoming, completed).
func GetLeagues(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// c.Query reads a URL query parameter; it is "" when absent, which means
		// "every status". Anything else must be one of the known values.
		status := models.LeagueStatus(c.Query("status"))
		switch status {
		case "", models.LeagueStatusUpcoming, models.LeagueStatusActive, models.LeagueStatusCompleted:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "status must be 'upcoming', 'active', or 'completed'",
			})
		}

		leagues, err := d.Store.Leagues(c.UserContext(), status)
		if err != nil {
			return storeError(c, d, err, "fetch leagues")
		}
		// make with length 0 (not a nil slice) so an empty list encodes as [] rather
		// than null.
		response := make([]LeagueResponse, 0, len(leagues))
		for _, l := range leagues {
			response = append(response, leagueResponse(l))
		}
		return c.JSON(response)
	}
}

// CreateLeague returns a handler for POST /api/v1/leagues.
// Requires "admin" or "manager" (RequireRole on the route). The caller becomes the
// league's creator and so one of its organizers.
func CreateLeague(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// c.BodyParser decodes the JSON body into req based on its json tags.
		var req CreateLeagueRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		if req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "name is required",
			})
		}
		start, err := parseOptionalDate(req.StartDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "start_date must be in YYYY-MM-DD format",
			})
		}
		if req.Weeks < 0 || req.Weeks > 52 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "weeks must be between 0 and 52",
			})
		}
		if req.Weeks > 0 && start == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "start_date is required when weeks is set",
			})
		}

		// The league and its weeks are written in one transaction, so a failure
		// never leaves a league with half a schedule.
		league, err := d.Store.CreateLeague(c.UserContext(), store.NewLeague{
			Name:      req.Name,
			CreatedBy: currentUser(c),
			Start:     start,
			Weeks:     req.Weeks,
		})
		if err != nil {
			return storeError(c, d, err, "create league")
		}

		// Fetch the creator's display name for the response
		if league.CreatedBy != nil {
			var creator models.User
			if err := d.Store.DB().WithContext(c.UserContext()).First(&creator, "id = ?", *league.CreatedBy).Error; err == nil {
				league.Creator = &creator
			}
		}
		resp := leagueResponse(store.LeagueSummary{League: *league, WeekCount: int64(len(league.Weeks))})
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}
