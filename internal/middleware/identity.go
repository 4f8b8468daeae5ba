package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errBadHeader  = errors.New("invalid authorization header format")
	errBadToken   = errors.New("invalid or expired token")
	errBadSubject = errors.New("invalid user ID in token")
)

// Identity resolves the acting user for every request. A bearer token (or a
// ?token= query parameter for websocket upgrades) signed with secret selects
// the user from its "sub" claim; without one the request acts as fallbackID.
// A token that is present but invalid is rejected with 401.
func Identity(secret string, fallbackID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}

		userID := fallbackID
		if token != "" {
			userID, err = ParseUserToken(token, secret)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
			}
		}

		c.Locals("userID", userID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Query("token"), nil
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errBadHeader
	}
	return parts[1], nil
}

// ParseUserToken validates an HMAC-signed token and returns its subject as a user id.
func ParseUserToken(tokenString, secret string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errBadToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errBadSubject
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || id == 0 {
		return 0, errBadSubject
	}
	return uint(id), nil
}

// IssueUserToken signs a token whose subject is userID. Used by the tail
// client and tests to act as a specific user.
func IssueUserToken(userID uint, secret string) (string, error) {
	claims := jwt.RegisteredClaims{Subject: strconv.FormatUint(uint64(userID), 10)}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// UserID returns the acting user resolved by Identity, or 0.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}
