package utils

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims matches the tokens issued by the main HR application; this
// service only validates them for its control surface.
type AccessClaims struct {
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId,omitempty"`
	jwt.RegisteredClaims
}
