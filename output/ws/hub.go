// websocket观察端：把每一帧广播给所有连接的浏览器，并接收观察端发来的障碍物翻转请求
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
)

var log = logrus.WithField("module", "ws")

const writeWait = time.Second

// 服务端发送的消息
type frameMessage struct {
	Type  string       `json:"type"` // "frame"
	Frame entity.Frame `json:"frame"`
}

// 观察端发送的消息
type clientMessage struct {
	Toggle *entity.Cell `json:"toggle,omitempty"`
}

type subscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *subscriber) send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub websocket观察端集合
// 功能：实现渲染接收方，广播JSON帧；把观察端的翻转请求放入障碍物队列
// 说明：新连接先收到最近一帧
type Hub struct {
	toggles  entity.IToggleQueue
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	last        []byte

	server *http.Server
}

// NewHub 创建观察端集合
func NewHub(toggles entity.IToggleQueue) *Hub {
	return &Hub{
		toggles: toggles,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		subscribers: make(map[*subscriber]struct{}),
	}
}

// Start 在addr上监听/ws
func (h *Hub) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	h.server = &http.Server{Handler: mux}
	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("websocket server failed: %v", err)
		}
	}()
	log.Infof("websocket viewers on ws://%s/ws", ln.Addr())
	return nil
}

// ServeHTTP 升级为websocket连接并处理观察端消息
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("upgrade failed: %v", err)
		return
	}
	sub := &subscriber{conn: conn}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	last := h.last
	h.mu.Unlock()
	defer h.remove(sub)

	if last != nil {
		if err := sub.send(last); err != nil {
			return
		}
	}
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Debugf("discarding malformed message: %v", err)
			continue
		}
		if msg.Toggle != nil {
			h.toggles.Push(*msg.Toggle)
		}
	}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.subscribers, sub)
	h.mu.Unlock()
	sub.conn.Close()
}

// Render 广播一帧
func (h *Hub) Render(frame entity.Frame) {
	data, err := json.Marshal(frameMessage{Type: "frame", Frame: frame})
	if err != nil {
		log.Errorf("failed to marshal frame: %v", err)
		return
	}
	h.mu.Lock()
	h.last = data
	subs := make([]*subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		if err := sub.send(data); err != nil {
			log.Debugf("drop viewer: %v", err)
			h.remove(sub)
		}
	}
}

// Len 当前连接数
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close 关闭所有连接与监听
func (h *Hub) Close() error {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()
	for _, sub := range subs {
		h.remove(sub)
	}
	if h.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return h.server.Shutdown(ctx)
}
