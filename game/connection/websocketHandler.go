package connection

import (
	"context"
	"net/http"

	"itvserver/game"
	"itvserver/game/actions"
	"itvserver/game/broadcast"
	"itvserver/game/database"
	"itvserver/models"

	"go.uber.org/zap"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
)

// HandleConnections はWebSocket接続へのアップグレードとゲームへの参加を行う。
// roleクエリパラメータで host / player / audience を指定する（省略時はaudience）。
// SessionIDヘッダが有効な場合はクライアント情報を復元し、エンジンに残っていれば
// 同じIDのまま再参加する。
func HandleConnections(ctx context.Context, w http.ResponseWriter, r *http.Request, rdb *redis.Client, logger *zap.Logger, clients *models.ClientRegistry, engine *game.Engine, upgrader websocket.Upgrader) {
	role := r.URL.Query().Get("role")
	switch role {
	case models.RoleHost, models.RolePlayer, models.RoleAudience:
	case "":
		role = models.RoleAudience
	default:
		http.Error(w, "Unknown role", http.StatusBadRequest)
		return
	}
	name := r.URL.Query().Get("name")

	// WebSocket接続へのアップグレードと確立
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Error upgrading WebSocket", zap.Error(err))
		return
	}

	client := &models.Client{
		Conn: conn,
		Role: role,
		Name: name,
	}

	// セッションIDの検証と復元
	sessionID := r.Header.Get("SessionID") // クライアントが送るセッションID
	if sessionID != "" {
		if restored := database.ValidateSessionID(ctx, rdb, sessionID, logger); restored != nil {
			client.ClientID = restored.ClientID
			client.Role = restored.Role
			client.Name = restored.Name
			// 旧セッションの削除。新しいIDは接続確立後に発行し直す
			rdb.Del(ctx, "session:"+sessionID)
			logger.Info("Session restored", zap.String("clientID", client.ClientID), zap.String("role", client.Role))
		} else {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","error":"Invalid or expired session ID"}`))
		}
	}

	// 復元したIDがエンジンに残っていなければ新規参加として扱う
	if client.ClientID == "" || !knownToEngine(engine, client) {
		if err := joinGame(engine, client); err != nil {
			logger.Error("Failed to join game", zap.Error(err))
			conn.Close()
			return
		}
	}

	// クライアントリストに新規クライアントを追加
	clients.Add(client)
	logger.Info("New client added", zap.String("clientID", client.ClientID), zap.String("role", client.Role))

	// クライアントごとにメッセージ読み取りゴルーチンを起動
	go actions.HandleClient(client, clients, engine, logger)

	// Ping/Pongを管理するゴルーチンを起動
	go MaintainWebSocketConnection(client, clients, logger)

	// 新しいセッションIDを発行してクライアントへ返す
	if err := database.GenerateAndStoreSessionID(ctx, client, rdb, logger); err != nil {
		logger.Error("Failed to generate or store session ID", zap.Error(err))
	}

	// 現在のゲーム状態を全クライアントに共有
	broadcast.BroadcastGameState(engine.GameState(), clients, logger)
}

func joinGame(engine *game.Engine, client *models.Client) error {
	if client.Role == models.RoleAudience {
		member, err := engine.AddAudienceMember()
		if err != nil {
			return err
		}
		client.ClientID = member.ID
		return nil
	}
	player := engine.AddPlayer(client.Name, client.Role == models.RoleHost)
	client.ClientID = player.ID
	return nil
}

func knownToEngine(engine *game.Engine, client *models.Client) bool {
	state := engine.GameState()
	if client.Role == models.RoleAudience {
		for _, m := range state.Audience {
			if m.ID == client.ClientID {
				return true
			}
		}
		return false
	}
	for _, p := range state.Players {
		if p.ID == client.ClientID {
			return true
		}
	}
	return false
}
