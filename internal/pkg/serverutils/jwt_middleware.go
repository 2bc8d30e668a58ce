package serverutils

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const UserIdKey = "user_id"

// ParseToken validates an HS256 token signed with JWT_SECRET and returns the
// user id claim.
func ParseToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid claims")
	}

	// user_id is what the auth service issues, sub is accepted for external issuers
	if id, ok := claims["user_id"].(string); ok && id != "" {
		return id, nil
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	return "", fiber.NewError(fiber.StatusUnauthorized, "Token missing user_id")
}

// TokenFromRequest reads the bearer header, falling back to the token query
// parameter used by browser WebSocket clients.
func TokenFromRequest(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return ctx.Query("token")
}

func JwtMiddleware(ctx *fiber.Ctx) error {
	tokenStr := TokenFromRequest(ctx)
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	userId, err := ParseToken(tokenStr)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, err.Error()))
	}

	ctx.Locals(UserIdKey, userId)
	return ctx.Next()
}

// UserId is the authenticated user set by JwtMiddleware.
func UserId(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(UserIdKey).(string)
	return id
}
