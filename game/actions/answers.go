package actions

import (
	"itvserver/game"
	"itvserver/game/broadcast"
	"itvserver/models"

	"go.uber.org/zap"
)

// 偽回答の投稿を処理する。上限チェックはEngine側で行われる。
func handleSubmitFake(client *models.Client, clients *models.ClientRegistry, msg map[string]interface{}, engine *game.Engine, logger *zap.Logger) {
	content, ok := msg["content"].(string)
	if !ok || content == "" {
		sendErrorMessage(client, "Invalid fake answer")
		logger.Error("Invalid fake answer - type assertion failed", zap.Any("content", msg["content"]))
		return
	}

	if err := engine.SubmitFakeAnswer(client.ClientID, content); err != nil {
		logger.Info("Fake answer rejected", zap.String("clientID", client.ClientID), zap.Error(err))
		sendErrorMessage(client, err.Error())
		return
	}

	logger.Info("Fake answer submitted", zap.String("clientID", client.ClientID))
	broadcast.BroadcastGameState(engine.GameState(), clients, logger)
}

// 回答の選択を処理する。観客は観客用の採点（50点）、プレイヤーは100点が適用される。
func handleSelectAnswer(client *models.Client, msg map[string]interface{}, engine *game.Engine, logger *zap.Logger) {
	answerID, ok := msg["answerId"].(string)
	if !ok {
		sendErrorMessage(client, "Invalid answer id")
		logger.Error("Invalid answer id - type assertion failed", zap.Any("answerId", msg["answerId"]))
		return
	}

	var err error
	if client.Role == models.RoleAudience {
		err = engine.SelectAudienceAnswer(client.ClientID, answerID)
	} else {
		err = engine.SelectAnswer(client.ClientID, answerID)
	}
	if err != nil {
		logger.Error("Failed to select answer", zap.String("clientID", client.ClientID), zap.Error(err))
		sendErrorMessage(client, err.Error())
		return
	}

	sendMessage(client, map[string]interface{}{
		"type":     "answerAccepted",
		"answerId": answerID,
	}, logger)
}
