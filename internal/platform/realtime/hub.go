// Package realtime は再描画トリガーを WebSocket で購読者に配信します。
package realtime

import (
	"context"
	"log/slog"
	"sync/atomic"
)

const broadcastBuffer = 64

// Event はクライアントに送信されるメッセージです。
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Hub は接続中のクライアントを管理し、イベントをブロードキャストします。
// clients マップは Run のゴルーチンだけが操作します。
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	clients    map[*Client]struct{}
	count      atomic.Int64
	done       chan struct{}
}

// NewHub は新しいHubを生成します。配信を開始するには Run を呼び出します。
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, broadcastBuffer),
		clients:    make(map[*Client]struct{}),
		done:       make(chan struct{}),
	}
}

// Run は ctx がキャンセルされるまでHubのイベントループを実行します。
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Add(1)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case ev := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- ev:
				default:
					// 送信が追いつかないクライアントは切断する
					slog.Warn("websocket client too slow, disconnecting")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
}

// Publish はイベントをブロードキャストキューに積みます。キューが満杯の場合は破棄します。
func (h *Hub) Publish(eventType string, payload any) {
	select {
	case h.broadcast <- Event{Type: eventType, Payload: payload}:
	default:
		slog.Warn("realtime broadcast queue full, dropping event", "type", eventType)
	}
}

// ClientCount は接続中のクライアント数を返します。
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}
