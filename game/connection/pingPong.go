package connection

import (
	"time"

	"itvserver/game/broadcast"
	"itvserver/models"

	"go.uber.org/zap"

	"github.com/gorilla/websocket"
)

// MaintainWebSocketConnection はクライアントのWebSocket接続を維持し、Ping/Pongメッセージで接続をチェックします。
func MaintainWebSocketConnection(c *models.Client, clients *models.ClientRegistry, logger *zap.Logger) {
	defer func() {
		c.Conn.Close()
		clients.Remove(c) // クライアントリストから削除
		logger.Info("Client removed", zap.String("clientID", c.ClientID))
		// クライアントが切断されたことを他の参加者に通知
		broadcast.NotifyClientOnlineStatus(c.ClientID, c.Role, false, clients, logger)
	}()

	// Pongハンドラの設定: Pongを受信したら読み取りデッドラインを更新し、オンライン状態を通知
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		broadcast.NotifyClientOnlineStatus(c.ClientID, c.Role, true, clients, logger)
		return nil
	})
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))

	// Pingの送信間隔を設定
	pingPeriod := 10 * time.Second
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			logger.Error("Error sending ping", zap.Error(err))
			return
		}
	}
}
