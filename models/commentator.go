package models

import (
	"time"

	"gorm.io/gorm"
)

// Commentator モデルの定義。招待コード経由でサインアップした実況者。
// 招待発行直後は Name="Pending" のプレースホルダ行として作成され、
// サインアップ完了時に上書きされる。
type Commentator struct {
	gorm.Model
	CommentatorID   string `gorm:"unique;not null"` // クライアントに公開するUUID
	Name            string `gorm:"not null"`
	Username        string `gorm:"index;not null"`
	PasswordHash    string `gorm:"not null"`
	IsActive        bool   `gorm:"default:true"`
	InviteCode      string `gorm:"index"` // 未使用の招待コード。サインアップ完了でクリア
	InviteExpiresAt *time.Time
}

// CommentatorSession モデルの定義。ログインごとに発行されるセッション。
type CommentatorSession struct {
	gorm.Model
	SessionID     string    `gorm:"unique;not null"`
	CommentatorID string    `gorm:"index;not null"`
	Token         string    `gorm:"index;not null"` // 発行したJWTトークン
	ExpiresAt     time.Time `gorm:"not null"`
}
