package auth

import (
	"os"

	"itvserver/models"

	jwt "github.com/dgrijalva/jwt-go"
)

// JwtKey はトークンの署名に使う秘密鍵。環境変数から取得する。
var JwtKey = []byte(jwtKeyFromEnv())

func jwtKeyFromEnv() string {
	key := os.Getenv("JWT_SECRET")
	if key == "" {
		key = "development_secret" // 本番環境では必ずJWT_SECRETを設定すること
	}
	return key
}

func IsValidToken(tokenString string) (bool, error) {
	claims := &models.MyClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})

	if err != nil {
		return false, err
	}

	return token.Valid, nil
}

// ParseClaims はトークンを検証してクレームを返す。
func ParseClaims(tokenString string) (*models.MyClaims, error) {
	claims := &models.MyClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.NewValidationError("invalid token", jwt.ValidationErrorSignatureInvalid)
	}
	return claims, nil
}
