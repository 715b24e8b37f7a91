package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const tokenTypeAccess = "access"

var ErrInvalidClaims = errors.New("invalid token claims")

type Service interface {
	GenerateAccessToken(u user.User) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) *JWTService {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(u user.User) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, fmt.Errorf("parse access token expiration: %w", err)
	}
	expiresAt = j.now().Add(expDuration).Unix()

	claims := identityClaims(u.Identity())
	if claims["employee_id"] == nil {
		delete(claims, "employee_id")
	}
	claims["type"] = tokenTypeAccess
	claims["exp"] = expiresAt

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// EffectivePermissions is the role's permissions plus explicit grants, deduplicated.
func EffectivePermissions(id user.Identity) []string {
	seen := make(map[user.Permission]bool)
	var perms []string
	for _, p := range append(append([]user.Permission{}, user.RolePermissions[id.Role]...), id.Grants...) {
		if seen[p] {
			continue
		}
		seen[p] = true
		perms = append(perms, string(p))
	}
	return perms
}

func identityClaims(id user.Identity) map[string]interface{} {
	return map[string]interface{}{
		"user_id":     id.UserID,
		"email":       id.Email,
		"employee_id": returnValueOrNil(id.EmployeeID),
		"role":        string(id.Role),
		"permissions": EffectivePermissions(id),
	}
}

func returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

// IdentityFromContext reads the caller identity from the verified token that
// jwtauth.Verifier stored in ctx.
func IdentityFromContext(ctx context.Context) (user.Identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return user.Identity{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	return IdentityFromClaims(claims)
}

func IdentityFromClaims(claims map[string]interface{}) (user.Identity, error) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Identity{}, fmt.Errorf("%w: user_id claim is missing", ErrInvalidClaims)
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return user.Identity{}, fmt.Errorf("%w: role claim is missing", ErrInvalidClaims)
	}
	if !user.Role(role).IsValid() {
		return user.Identity{}, fmt.Errorf("%w: unknown role %q", ErrInvalidClaims, role)
	}

	id := user.Identity{
		UserID: userID,
		Role:   user.Role(role),
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		id.EmployeeID = &employeeID
	}

	// []string when set in-process, []interface{} after a JSON round trip.
	switch perms := claims["permissions"].(type) {
	case []string:
		for _, p := range perms {
			id.Grants = append(id.Grants, user.Permission(p))
		}
	case []interface{}:
		for _, p := range perms {
			if s, ok := p.(string); ok {
				id.Grants = append(id.Grants, user.Permission(s))
			}
		}
	}

	return id, nil
}

// NewContext returns ctx carrying a token for id, as jwtauth.Verifier would.
// Used by background jobs and tests that call services directly.
func NewContext(ctx context.Context, id user.Identity) (context.Context, error) {
	token := jwt.New()
	for k, v := range identityClaims(id) {
		if v == nil {
			continue
		}
		if err := token.Set(k, v); err != nil {
			return ctx, err
		}
	}
	if err := token.Set("type", tokenTypeAccess); err != nil {
		return ctx, err
	}
	return jwtauth.NewContext(ctx, token, nil), nil
}
