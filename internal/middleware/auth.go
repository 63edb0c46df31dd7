// Package middleware contains HTTP middleware functions for the league API.
// Middleware sits between the HTTP server and route handlers: it runs on every
// request that passes through it, making it the right place for cross-cutting
// concerns like authentication and request logging.
package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	// fiber is the HTTP framework; fiber.Handler is the function signature for middleware
	"github.com/gofiber/fiber/v2"
	// jwt parses and verifies JSON Web Tokens (JWTs) from the Authorization header
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	// clockwork lets tests pin "now" when checking token expiry
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	// gorm is our ORM, used here to find or create the user record
	"gorm.io/gorm"

	"github.com/trentd187/golf-league-matchups/internal/models"
)

// Locals keys set by Auth.
const (
	LocalUserID   = "userID"
	LocalUserRole = "userRole"
)

// Claims defines the data we expect inside a bearer token payload:
//
//	"sub":   the caller's stable identity at the token issuer
//	"role":  "admin", "manager" or "user"
//	"email": used to populate our users table
//	"name":  display name for our users table
//
// Missing role defaults to "user"; missing email and name get placeholders.
type Claims struct {
	jwt.RegisteredClaims        // Standard JWT fields: Subject, ExpiresAt, IssuedAt, etc.
	Role                 string `json:"role,omitempty"`
	Email                string `json:"email,omitempty"`
	Name                 string `json:"name,omitempty"`
}

// AuthConfig configures Auth.
type AuthConfig struct {
	Secret []byte
	DB     *gorm.DB
	Clock  clockwork.Clock // nil means the real clock
	Log    logrus.FieldLogger
}

// Auth returns a Fiber middleware handler that:
//  1. Verifies the HS256 JWT from the "Authorization: Bearer <token>" header
//  2. Finds the matching user in our database (or creates one on first visit)
//  3. Syncs the user's role from the token into the database
//  4. Stores the user's internal UUID and role in the request context (c.Locals)
//     so downstream handlers can read them without re-parsing the token
func Auth(cfg AuthConfig) fiber.Handler {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	// The parser is built once and shared by every request. WithValidMethods pins the
	// algorithm to HS256 so a token claiming "none" or RS256 is refused outright,
	// WithTimeFunc lets tests move the clock, and WithExpirationRequired rejects
	// tokens that never expire.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(clock.Now),
		jwt.WithExpirationRequired(),
	)
	// keyFunc hands the parser the key to verify the signature with. There is only
	// one shared secret, so the token's header does not matter here.
	keyFunc := func(*jwt.Token) (any, error) { return cfg.Secret, nil }

	return func(c *fiber.Ctx) error {
		// --- Step 1: Extract and verify the token ---
		// c.Get reads a request header. We expect exactly "Bearer <token>".
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid authorization header",
			})
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		// ParseWithClaims checks the signature and the expiry and fills claims in one
		// step. Any failure is a 401; an expired token gets its own message so clients
		// know to sign in again rather than report a bug.
		claims := &Claims{}
		if _, err := parser.ParseWithClaims(tokenStr, claims, keyFunc); err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
		}
		if claims.Subject == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token missing subject",
			})
		}

		// --- Step 2: Find or create the user ("lazy user sync") ---
		user, err := syncUser(cfg.DB, claims)
		if err != nil {
			if cfg.Log != nil {
				cfg.Log.WithError(err).WithField("subject", claims.Subject).Error("User sync failed")
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "database error",
			})
		}

		// --- Step 3: Store user info in the request context ---
		// c.Locals lives only as long as this request. The id is stored as a string;
		// UserID below parses it back for handlers that need a uuid.UUID.
		c.Locals(LocalUserID, user.ID.String())
		c.Locals(LocalUserRole, string(user.Role))
		return c.Next()
	}
}

// syncUser finds the user row for the token's subject, creating it on the first
// request ("lazy user sync"), so there is no separate sign-up step.
func syncUser(db *gorm.DB, claims *Claims) (*models.User, error) {
	role := roleFromClaim(claims.Role)

	// First returns gorm.ErrRecordNotFound when no row matches, which is the normal
	// first-visit case, not a failure.
	var user models.User
	err := db.Where("subject = ?", claims.Subject).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Email is unique in the users table, so a token without one gets a
		// placeholder derived from the subject instead of an empty string.
		email := claims.Email
		if email == "" {
			email = fmt.Sprintf("%s@users.local", claims.Subject)
		}
		name := claims.Name
		if name == "" {
			name = "User"
		}
		user = models.User{
			Subject:     claims.Subject,
			DisplayName: name,
			Email:       email,
			Role:        role,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	// Only a token that states a role may change it.
	if claims.Role != "" && user.Role != role {
		if err := db.Model(&user).Update("role", role).Error; err != nil {
			return nil, fmt.Errorf("update user role: %w", err)
		}
		user.Role = role
	}
	return &user, nil
}

// roleFromClaim converts the raw role string from the token into our typed UserRole.
// If the claim is missing or unrecognised, it defaults to "user" (least privileged).
func roleFromClaim(s string) models.UserRole {
	switch s {
	case "admin":
		return models.UserRoleAdmin
	case "manager":
		return models.UserRoleManager
	default:
		return models.UserRoleUser
	}
}

// UserID returns the authenticated user's id, if Auth ran.
func UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	s, ok := c.Locals(LocalUserID).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// SignToken issues an HS256 token for subject valid for ttl from clock's now. The
// leaguectl token command and tests use it.
func SignToken(secret []byte, clock clockwork.Clock, subject, role, name string, ttl time.Duration) (string, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	now := clock.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
		Name: name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
