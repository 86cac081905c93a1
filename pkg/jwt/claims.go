package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// ServiceClaims represents JWT custom claims for a calling service
type ServiceClaims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}
