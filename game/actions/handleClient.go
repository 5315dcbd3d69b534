package actions

import (
	"encoding/json"

	"itvserver/game"
	"itvserver/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// クライアントごとにメッセージ読み取りするゴルーチン。
// Engine側で排他制御されるため、ここでは受信順にそのまま呼び出せばよい。
func HandleClient(client *models.Client, clients *models.ClientRegistry, engine *game.Engine, logger *zap.Logger) {
	defer func() {
		client.Conn.Close()
		clients.Remove(client)
		// 切断したクライアントをゲームからも退場させる
		if client.Role == models.RoleAudience {
			engine.RemoveAudienceMember(client.ClientID)
		} else {
			engine.RemovePlayer(client.ClientID)
		}
		logger.Info("Client left the game", zap.String("clientID", client.ClientID), zap.String("role", client.Role))
	}()

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		// 受信したメッセージをJSON形式でデコード
		var msg map[string]interface{}
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Error("Error decoding message", zap.Error(err))
			continue
		}

		msgType, _ := msg["type"].(string)
		switch msgType {
		case "start_round":
			handleStartRound(client, clients, engine, logger)
		case "end_round":
			handleEndRound(client, clients, engine, logger)
		case "reset_game":
			handleResetGame(client, clients, engine, logger)
		case "submit_fake":
			handleSubmitFake(client, clients, msg, engine, logger)
		case "select_answer":
			handleSelectAnswer(client, msg, engine, logger)
		case "cohort_stats":
			handleCohortStats(client, engine, logger)
		default:
			logger.Info("Received unknown message type", zap.Any("message", msg))
		}
	}
}

// Helper function to send error message to the client via WebSocket
func sendErrorMessage(client *models.Client, errorMessage string) {
	errorResponse := map[string]string{"type": "error", "error": errorMessage}
	errorJSON, _ := json.Marshal(errorResponse)
	client.Conn.WriteMessage(websocket.TextMessage, errorJSON)
}

func sendMessage(client *models.Client, payload map[string]interface{}, logger *zap.Logger) {
	messageJSON, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error marshalling message", zap.Error(err))
		return
	}
	if err := client.Conn.WriteMessage(websocket.TextMessage, messageJSON); err != nil {
		logger.Error("Error sending message", zap.String("to", client.ClientID), zap.Error(err))
	}
}
