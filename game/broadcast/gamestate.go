package broadcast

import (
	"encoding/json"

	"itvserver/models"

	"go.uber.org/zap"

	"github.com/gorilla/websocket"
)

// ゲームの状態を全クライアントにブロードキャストするヘルパー関数
func BroadcastGameState(state models.Game, clients *models.ClientRegistry, logger *zap.Logger) {
	playersInfo := make([]map[string]interface{}, 0, len(state.Players))
	for _, player := range state.Players {
		playersInfo = append(playersInfo, map[string]interface{}{
			"id":     player.ID,
			"name":   player.Name,
			"score":  player.Score,
			"isHost": player.IsHost,
		})
	}

	payload := map[string]interface{}{
		"type":           "gameState",
		"gameId":         state.ID,
		"status":         state.Status,
		"round":          state.Round,
		"playersInfo":    playersInfo,
		"audienceCount":  len(state.Audience),
		"fakeAnswers":    state.FakeAnswers,
		"currentContent": state.CurrentContent,
		"roundEndTime":   state.RoundEndTime,
	}
	messageJSON, _ := json.Marshal(payload)

	for _, client := range clients.Snapshot() {
		if err := client.Conn.WriteMessage(websocket.TextMessage, messageJSON); err != nil {
			logger.Error("Failed to broadcast game state", zap.String("clientID", client.ClientID), zap.Error(err))
		}
	}
}

// ラウンド終了時の統計を全クライアントにブロードキャストする
func BroadcastRoundStats(stats *models.GameStats, clients *models.ClientRegistry, logger *zap.Logger) {
	payload := map[string]interface{}{
		"type":                 "roundStats",
		"totalRounds":          stats.TotalRounds,
		"playerScores":         stats.PlayerScores,
		"cohortScores":         stats.CohortScores,
		"averageAudienceScore": stats.AverageAudienceScore,
		"mostSuccessfulCohort": stats.MostSuccessfulCohort,
		"mostSuccessfulPlayer": stats.MostSuccessfulPlayer,
	}
	messageJSON, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal round stats", zap.Error(err))
		return
	}

	for _, client := range clients.Snapshot() {
		if err := client.Conn.WriteMessage(websocket.TextMessage, messageJSON); err != nil {
			logger.Error("Failed to broadcast round stats", zap.String("clientID", client.ClientID), zap.Error(err))
		}
	}
}

// 新しいラウンドの初期状態をブロードキャストする
func BroadcastRoundSnapshot(snapshot *models.RoundSnapshot, clients *models.ClientRegistry, logger *zap.Logger) {
	payload := map[string]interface{}{
		"type":          "roundStarted",
		"content":       snapshot.Content,
		"fakeAnswers":   snapshot.FakeAnswers,
		"correctAnswer": snapshot.CorrectAnswer,
	}
	messageJSON, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal round snapshot", zap.Error(err))
		return
	}

	for _, client := range clients.Snapshot() {
		if err := client.Conn.WriteMessage(websocket.TextMessage, messageJSON); err != nil {
			logger.Error("Failed to broadcast round snapshot", zap.String("clientID", client.ClientID), zap.Error(err))
		}
	}
}

// クライアントの接続状態を他の全クライアントに通知する
func NotifyClientOnlineStatus(clientID string, role string, isOnline bool, clients *models.ClientRegistry, logger *zap.Logger) {
	for _, client := range clients.Snapshot() {
		if client.ClientID == clientID {
			continue
		}
		statusMessage := map[string]interface{}{
			"type":     "onlineStatus",
			"clientId": clientID,
			"role":     role,
			"isOnline": isOnline,
		}
		messageJSON, err := json.Marshal(statusMessage)
		if err != nil {
			logger.Error("Failed to marshal online status message", zap.Error(err))
			continue
		}
		if err := client.Conn.WriteMessage(websocket.TextMessage, messageJSON); err != nil {
			logger.Error("Failed to send online status", zap.String("to", client.ClientID), zap.Error(err))
		}
	}
}
