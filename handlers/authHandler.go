package handlers

import (
	"net/http"
	"strings"
	"time"

	"itvserver/auth"
	"itvserver/middlewares"
	"itvserver/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Login は実況者のログインを処理するハンドラー。
// 認証に成功するとJWTトークンを発行し、セッションとして保存する。
func Login(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	var request models.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Login request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var commentator models.Commentator
	if err := db.Where("username = ? AND invite_code = ''", request.Username).First(&commentator).Error; err != nil {
		logger.Warn("Login with unknown username", zap.String("username", request.Username))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "認証失敗"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(commentator.PasswordHash), []byte(request.Password)); err != nil {
		logger.Warn("Login with invalid password", zap.String("username", request.Username))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "認証失敗"})
		return
	}

	token, expiresAt, err := middlewares.GenerateToken(commentator.CommentatorID)
	if err != nil {
		logger.Error("Token generation error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "トークン生成に失敗しました"})
		return
	}

	session := models.CommentatorSession{
		SessionID:     uuid.New().String(),
		CommentatorID: commentator.CommentatorID,
		Token:         token,
		ExpiresAt:     expiresAt,
	}
	if err := db.Create(&session).Error; err != nil {
		logger.Error("Failed to store session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "セッションの保存に失敗しました"})
		return
	}

	logger.Info("Commentator logged in", zap.String("commentatorID", commentator.CommentatorID))
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"sessionId": session.SessionID,
		"expiresAt": expiresAt,
	})
}

// ValidateSession はトークンに対応するセッションの有効性を返すハンドラー。
func ValidateSession(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	tokenString := c.GetHeader("Authorization")
	if strings.HasPrefix(tokenString, "Bearer ") {
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	}

	if valid, err := auth.IsValidToken(tokenString); err != nil || !valid {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}

	var session models.CommentatorSession
	if err := db.Where("token = ? AND expires_at > ?", tokenString, time.Now()).First(&session).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}
