package domain

import "github.com/golang-jwt/jwt/v5"

// IronRankClaims is the JWT payload issued by the upstream auth
// service. The core only consumes it.
type IronRankClaims struct {
	UserID  string `json:"user_id"`
	Premium bool   `json:"premium"`
	Admin   bool   `json:"admin"`
	jwt.RegisteredClaims
}
