package utils

import (
	"time"

	"itvserver/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func CronCleaner(db *gorm.DB, logger *zap.Logger) {
	c := cron.New()

	// 期限切れセッションを削除するジョブ（毎日特定の時間に実行）
	c.AddFunc("@daily", func() {
		logger.Info("期限切れセッションの削除処理を開始")
		result := db.Where("expires_at <= ?", time.Now()).Delete(&models.CommentatorSession{})
		if result.Error != nil {
			logger.Error("期限切れセッションの削除に失敗しました", zap.Error(result.Error))
		} else {
			logger.Info("期限切れセッションの削除完了", zap.Int("sessions_deleted", int(result.RowsAffected)))
		}
	})

	// 未使用のまま期限切れになった招待コードを削除するジョブ（"分 時 日 月 曜日"）
	c.AddFunc("0 3 * * *", func() {
		logger.Info("期限切れ招待コードの削除処理を開始")
		result := db.Where("invite_code <> '' AND invite_expires_at <= ?", time.Now()).
			Delete(&models.Commentator{})
		if result.Error != nil {
			logger.Error("期限切れ招待コードの削除に失敗しました", zap.Error(result.Error))
		} else {
			logger.Info("期限切れ招待コードの削除完了", zap.Int("invites_deleted", int(result.RowsAffected)))
		}
	})

	c.Start()
}
