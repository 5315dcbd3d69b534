package models

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocket接続のロール
const (
	RoleHost     = "host"     // ラウンド進行の操作が可能
	RolePlayer   = "player"   // ターゲットプレイヤー
	RoleAudience = "audience" // 観客（コホートに割り当てられる）
)

// Websocketクライアントを定義
type Client struct {
	Conn     *websocket.Conn
	ClientID string // Engineに登録したPlayerまたはAudienceMemberのID
	Role     string // "host", "player", "audience"
	Name     string
}

// ClientRegistry は接続中クライアントの一覧。読み取りループ・Ping/Pong・
// ブロードキャストの各ゴルーチンから同時にアクセスされるためmuで保護する。
type ClientRegistry struct {
	clients map[*Client]bool
	mu      sync.Mutex
}

func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{clients: make(map[*Client]bool)}
}

func (r *ClientRegistry) Add(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client] = true
}

func (r *ClientRegistry) Remove(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, client)
}

// Snapshot は現在のクライアント一覧のコピーを返す。ブロードキャスト中の
// 追加・削除と競合しないよう、送信処理はロックの外で行う。
func (r *ClientRegistry) Snapshot() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([]*Client, 0, len(r.clients))
	for client := range r.clients {
		snapshot = append(snapshot, client)
	}
	return snapshot
}

func (r *ClientRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
