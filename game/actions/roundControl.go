package actions

import (
	"context"

	"itvserver/game"
	"itvserver/game/broadcast"
	"itvserver/models"

	"go.uber.org/zap"
)

// ラウンドの開始・終了・リセットはホストのみ実行できる
func isHost(client *models.Client) bool {
	return client.Role == models.RoleHost
}

func handleStartRound(client *models.Client, clients *models.ClientRegistry, engine *game.Engine, logger *zap.Logger) {
	if !isHost(client) {
		sendErrorMessage(client, "Only the host can start a round")
		return
	}

	snapshot, err := engine.StartRound(context.Background())
	if err != nil {
		logger.Error("Failed to start round", zap.Error(err))
		sendErrorMessage(client, err.Error())
		return
	}

	broadcast.BroadcastRoundSnapshot(snapshot, clients, logger)
	broadcast.BroadcastGameState(engine.GameState(), clients, logger)
}

func handleEndRound(client *models.Client, clients *models.ClientRegistry, engine *game.Engine, logger *zap.Logger) {
	if !isHost(client) {
		sendErrorMessage(client, "Only the host can end a round")
		return
	}

	stats, err := engine.EndRound()
	if err != nil {
		logger.Error("Failed to end round", zap.Error(err))
		sendErrorMessage(client, err.Error())
		return
	}

	broadcast.BroadcastRoundStats(stats, clients, logger)
	broadcast.BroadcastGameState(engine.GameState(), clients, logger)
}

func handleResetGame(client *models.Client, clients *models.ClientRegistry, engine *game.Engine, logger *zap.Logger) {
	if !isHost(client) {
		sendErrorMessage(client, "Only the host can reset the game")
		return
	}

	engine.ResetGame()
	logger.Info("Game reset by host", zap.String("clientID", client.ClientID))
	broadcast.BroadcastGameState(engine.GameState(), clients, logger)
}

func handleCohortStats(client *models.Client, engine *game.Engine, logger *zap.Logger) {
	stats := engine.CohortStats()
	sendMessage(client, map[string]interface{}{
		"type":    "cohortStats",
		"cohorts": stats,
	}, logger)
}
