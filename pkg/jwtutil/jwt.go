package jwtutil

import (
	"time"

	"checksuite-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

var (
	signingKey = []byte("checksuitesecretkey")
	expiration = 24 * time.Hour
)

// Initialize configures the signing key and token lifetime from config
func Initialize(cfg *config.JWTConfig) {
	signingKey = []byte(cfg.SigningKey)
	expiration = time.Duration(cfg.ExpirationHours) * time.Hour
}

// UserClaims represents the JWT claims for user authentication.
// The workspace fields pin the caller's active workspace: every
// authenticated operation acts within exactly this workspace.
type UserClaims struct {
	Email         string `json:"email"`
	UserID        string `json:"user_id"`
	WorkspaceID   string `json:"workspace_id,omitempty"`
	WorkspaceName string `json:"workspace_name,omitempty"`
	Role          string `json:"role,omitempty"` // User's coarse role in the active workspace
	jwt.RegisteredClaims
}

// GenerateToken creates a JWT token with user and active-workspace information
func GenerateToken(email, userID, workspaceID, workspaceName, role string) (string, error) {
	claims := UserClaims{
		Email:         email,
		UserID:        userID,
		WorkspaceID:   workspaceID,
		WorkspaceName: workspaceName,
		Role:          role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
