package database

import (
	"context"
	"encoding/json"
	"time"

	"itvserver/models"

	"go.uber.org/zap"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ValidateSessionID checks the session ID from Redis and returns the client if the session is valid.
func ValidateSessionID(ctx context.Context, rdb *redis.Client, sessionID string, logger *zap.Logger) *models.Client {
	if sessionID == "" {
		return nil
	}

	sessionInfoJSON, err := rdb.Get(ctx, "session:"+sessionID).Result()
	if err != nil {
		logger.Error("Failed to retrieve session info", zap.Error(err))
		return nil
	}

	var sessionInfo map[string]string
	if err := json.Unmarshal([]byte(sessionInfoJSON), &sessionInfo); err != nil {
		logger.Error("Failed to decode session info", zap.Error(err))
		return nil
	}

	clientID, ok := sessionInfo["clientID"]
	if !ok || clientID == "" {
		logger.Error("Invalid session info: missing clientID")
		return nil
	}
	role, ok := sessionInfo["role"]
	if !ok {
		logger.Error("Invalid session info: missing role")
		return nil
	}

	// 有効なセッション情報を基にClientオブジェクトを作成
	return &models.Client{
		ClientID: clientID,
		Role:     role,
		Name:     sessionInfo["name"],
	}
}

// GenerateAndStoreSessionID は新しいセッションIDを発行してRedisに保存し、
// クライアントへ送り返す。再接続時のセッション復元に使う。
func GenerateAndStoreSessionID(ctx context.Context, client *models.Client, rdb *redis.Client, logger *zap.Logger) error {
	sessionID := uuid.New().String()

	// セッション情報をJSON形式でエンコード
	sessionInfo := map[string]string{
		"clientID": client.ClientID,
		"role":     client.Role,
		"name":     client.Name,
	}
	sessionInfoJSON, err := json.Marshal(sessionInfo)
	if err != nil {
		logger.Error("Error encoding session info", zap.Error(err))
		return err
	}

	// セッションIDとセッション情報をRedisに保存（24時間の有効期限）
	err = rdb.Set(ctx, "session:"+sessionID, sessionInfoJSON, 24*time.Hour).Err()
	if err != nil {
		logger.Error("Error storing session info in Redis", zap.Error(err))
		return err
	}

	return sendSessionIDToClient(client, sessionID, logger)
}

func sendSessionIDToClient(client *models.Client, sessionID string, logger *zap.Logger) error {
	response := map[string]interface{}{
		"type":      "session",
		"sessionID": sessionID,
		"clientID":  client.ClientID,
		"role":      client.Role,
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		logger.Error("Error marshalling session ID response", zap.Error(err))
		return err
	}

	if client.Conn == nil {
		logger.Warn("WebSocket connection is not established, cannot send session ID")
		return nil
	}
	if err := client.Conn.WriteMessage(websocket.TextMessage, responseJSON); err != nil {
		logger.Error("Error sending session ID to client", zap.Error(err))
		return err
	}
	return nil
}
