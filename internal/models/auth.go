package models

import "github.com/golang-jwt/jwt/v5"

// Roles recognised by the API layer.
const (
	RoleClient   = "client"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// JWTClaims are the claims embedded in access tokens issued by the external
// auth collaborator. ResidenceID scopes slot recommendations for clients.
type JWTClaims struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	ResidenceID string `json:"residencia_id,omitempty"`
	jwt.RegisteredClaims
}
