package handlers

import (
	"net/http"
	"time"

	"itvserver/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SignupWithInvite は招待コード経由のサインアップを処理するハンドラー。
// 有効な招待コードのプレースホルダ行を実アカウントに書き換える。
func SignupWithInvite(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	var request models.SignupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Signup request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if request.Username == "" || request.Password == "" || request.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ユーザー名・パスワード・表示名は必須です"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "サインアップに失敗しました"})
		return
	}

	var commentator models.Commentator
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invite_code = ? AND invite_expires_at > ?", request.InviteCode, time.Now()).
			First(&commentator).Error; err != nil {
			return err
		}

		commentator.Name = request.Name
		commentator.Username = request.Username
		commentator.PasswordHash = string(passwordHash)
		commentator.InviteCode = ""
		commentator.InviteExpiresAt = nil
		return tx.Save(&commentator).Error
	})
	if err != nil {
		logger.Warn("Signup with invalid or expired invite", zap.String("inviteCode", request.InviteCode), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "招待コードが無効か期限切れです"})
		return
	}

	logger.Info("Commentator signed up", zap.String("commentatorID", commentator.CommentatorID), zap.String("username", commentator.Username))
	c.JSON(http.StatusOK, gin.H{
		"id":       commentator.CommentatorID,
		"name":     commentator.Name,
		"username": commentator.Username,
		"isActive": commentator.IsActive,
	})
}
