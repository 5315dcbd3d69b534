package middlewares

import (
	"time"

	"itvserver/auth"
	"itvserver/models"

	jwt "github.com/dgrijalva/jwt-go"
)

// セッションの有効期限は24時間
const SessionDuration = 24 * time.Hour

// GenerateToken は実況者IDを内包したJWTトークンを生成する。
func GenerateToken(commentatorID string) (string, time.Time, error) {
	expirationTime := time.Now().Add(SessionDuration)

	// JWTトークン生成時に内包するデータ
	claims := &models.MyClaims{
		CommentatorID: commentatorID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(auth.JwtKey)
	return tokenString, expirationTime, err
}
