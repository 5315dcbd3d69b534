package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const maxRetries = 3                  // 最大再試行回数
const retryInterval = 5 * time.Second // 再試行間の待機時間

var logger *zap.Logger

func init() {
	var err error
	// Zapのロガーを設定
	logger, err = zap.NewProduction()
	if err != nil {
		panic(err)
	}
}

// Commentator モデルの定義（itvserver/models と同じスキーマ）
type Commentator struct {
	gorm.Model
	CommentatorID   string `gorm:"unique;not null"`
	Name            string `gorm:"not null"`
	Username        string `gorm:"index;not null"`
	PasswordHash    string `gorm:"not null"`
	IsActive        bool   `gorm:"default:true"`
	InviteCode      string `gorm:"index"`
	InviteExpiresAt *time.Time
}

// CommentatorSession モデルの定義
type CommentatorSession struct {
	gorm.Model
	SessionID     string    `gorm:"unique;not null"`
	CommentatorID string    `gorm:"index;not null"`
	Token         string    `gorm:"index;not null"`
	ExpiresAt     time.Time `gorm:"not null"`
}

// テーブルの作成。`go run ./migrations` で単体実行する。
func main() {
	// 環境変数からデータベースの接続情報を取得
	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	dbname := os.Getenv("DB_NAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")

	dsn := fmt.Sprintf("host=%s user=%s dbname=%s password=%s sslmode=%s",
		host, user, dbname, password, sslmode)

	var db *gorm.DB
	var err error
	for i := 0; i <= maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		logger.Error("データベース接続のリトライ", zap.Int("retry", i), zap.Error(err))
		time.Sleep(retryInterval)
	}
	if err != nil {
		logger.Fatal("データベース接続に失敗しました", zap.Error(err))
	}

	if err := db.AutoMigrate(&Commentator{}, &CommentatorSession{}); err != nil {
		logger.Fatal("テーブル作成に失敗しました", zap.Error(err))
	}
	fmt.Println("Commentator tables created successfully")
}
