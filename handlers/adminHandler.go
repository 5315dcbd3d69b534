package handlers

import (
	"net/http"

	"itvserver/models"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListCommentators は登録済みの実況者一覧を返すハンドラー（管理画面用）。
func ListCommentators(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	var commentators []models.Commentator
	if err := db.Where("invite_code = ''").Order("created_at DESC").Find(&commentators).Error; err != nil {
		logger.Error("Failed to list commentators", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "実況者一覧の取得に失敗しました"})
		return
	}

	result := make([]gin.H, 0, len(commentators))
	for _, com := range commentators {
		result = append(result, gin.H{
			"id":        com.CommentatorID,
			"name":      com.Name,
			"username":  com.Username,
			"isActive":  com.IsActive,
			"createdAt": com.CreatedAt,
			"updatedAt": com.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"commentators": result})
}

// ToggleCommentator は実況者の有効・無効を切り替えるハンドラー。
func ToggleCommentator(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	id := c.Param("id")

	var body struct {
		IsActive bool `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := db.Model(&models.Commentator{}).Where("commentator_id = ?", id).Update("is_active", body.IsActive)
	if result.Error != nil {
		logger.Error("Failed to toggle commentator", zap.String("commentatorID", id), zap.Error(result.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新に失敗しました"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "実況者が見つかりません"})
		return
	}

	logger.Info("Commentator toggled", zap.String("commentatorID", id), zap.Bool("isActive", body.IsActive))
	c.JSON(http.StatusOK, gin.H{"id": id, "isActive": body.IsActive})
}

// DeleteCommentator は実況者を削除するハンドラー。セッションも併せて削除する。
func DeleteCommentator(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	id := c.Param("id")

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("commentator_id = ?", id).Delete(&models.CommentatorSession{}).Error; err != nil {
			return err
		}
		return tx.Where("commentator_id = ?", id).Delete(&models.Commentator{}).Error
	})
	if err != nil {
		logger.Error("Failed to delete commentator", zap.String("commentatorID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "削除に失敗しました"})
		return
	}

	logger.Info("Commentator deleted", zap.String("commentatorID", id))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
