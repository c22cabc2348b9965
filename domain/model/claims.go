package model

import "github.com/golang-jwt/jwt"

// OperatorClaims is the JWT payload accepted by the admin API.
type OperatorClaims struct {
	UserName string `json:"user_name"`
	jwt.StandardClaims
}
