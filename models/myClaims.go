package models

import (
	"github.com/dgrijalva/jwt-go"
)

// MyClaims はJWTクレームの構造体定義です。
type MyClaims struct {
	CommentatorID string `json:"commentatorId"`
	jwt.StandardClaims
}
