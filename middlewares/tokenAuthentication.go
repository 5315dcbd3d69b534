package middlewares

import (
	"net/http"
	"strings"
	"time"

	"itvserver/auth"
	"itvserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// トークン検証とセッション検証を行うミドルウェア。
// 検証に成功するとCommentatorIDをコンテキストにセットする。
func AuthMiddleware(db *gorm.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if strings.HasPrefix(tokenString, "Bearer ") {
			tokenString = strings.TrimPrefix(tokenString, "Bearer ")
		}

		claims, err := auth.ParseClaims(tokenString)
		if err != nil {
			logger.Warn("Token validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		// トークンに対応する有効なセッションが存在するか確認
		var session models.CommentatorSession
		if err := db.Where("token = ? AND expires_at > ?", tokenString, time.Now()).First(&session).Error; err != nil {
			logger.Warn("Session not found or expired", zap.String("commentatorID", claims.CommentatorID))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set("CommentatorID", claims.CommentatorID)
		c.Next()
	}
}
