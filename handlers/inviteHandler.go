package handlers

import (
	"fmt"
	"net/http"
	"time"

	"itvserver/models"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

// 招待コードの有効期限は24時間
const inviteDuration = 24 * time.Hour

// GenerateInvite は新しい招待コードを発行するハンドラー。
// サインアップ完了まではプレースホルダ行として保存される。
func GenerateInvite(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	inviteCode := uuid.New().String()
	expiresAt := time.Now().Add(inviteDuration)

	commentator := models.Commentator{
		CommentatorID:   uuid.New().String(),
		Name:            "Pending",
		Username:        "pending",
		PasswordHash:    "",
		InviteCode:      inviteCode,
		InviteExpiresAt: &expiresAt,
	}
	if err := db.Create(&commentator).Error; err != nil {
		logger.Error("Failed to create invite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "招待コードの発行に失敗しました"})
		return
	}

	logger.Info("Invite code generated", zap.String("inviteCode", inviteCode))
	c.JSON(http.StatusOK, gin.H{"inviteCode": inviteCode, "expiresAt": expiresAt})
}

// ValidateInvite は招待コードが有効かどうかを返すハンドラー。
func ValidateInvite(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	code := c.Param("code")

	var commentator models.Commentator
	err := db.Where("invite_code = ? AND invite_expires_at > ?", code, time.Now()).First(&commentator).Error
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// InviteQR は招待コード入りのサインアップURLをQRコード画像（PNG）で返すハンドラー。
// 実況者候補に画面越しに読み取ってもらう用途。
func InviteQR(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	code := c.Param("code")

	var commentator models.Commentator
	err := db.Where("invite_code = ? AND invite_expires_at > ?", code, time.Now()).First(&commentator).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "無効な招待コードです"})
		return
	}

	signupURL := fmt.Sprintf("https://%s/commentator-signup?invite=%s", c.Request.Host, code)
	png, err := qrcode.Encode(signupURL, qrcode.Medium, 256)
	if err != nil {
		logger.Error("Failed to encode QR code", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "QRコードの生成に失敗しました"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
