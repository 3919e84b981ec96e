// internal/handler/websocket.go - 任务进度WebSocket推送处理器
package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"synthesis-tracker/internal/broadcast"
	"synthesis-tracker/internal/dto"
	"synthesis-tracker/pkg/logger"
	"synthesis-tracker/pkg/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler 任务进度WebSocket处理器。
// 协议：客户端发送 {type: subscribe|unsubscribe|ping, jobId}，
// 服务端推送 {type: progress, jobId, data}。
type WebSocketHandler struct {
	bus     *broadcast.ProgressBus
	metrics *metrics.TrackerMetrics
	logger  logger.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(bus *broadcast.ProgressBus, trackerMetrics *metrics.TrackerMetrics, logger logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		bus:     bus,
		metrics: trackerMetrics,
		logger:  logger,
	}
}

// wsSession 单个WebSocket连接的状态
type wsSession struct {
	conn *websocket.Conn
	out  chan dto.WSServerMessage
	done chan struct{}
	once sync.Once

	mu   sync.Mutex
	subs map[string]*broadcast.Subscription // jobID -> subscription
}

// Serve 升级连接并处理订阅协议
// @Summary 任务进度推送
// @Description WebSocket端点，按jobId订阅任务进度
// @Tags jobs
// @Router /synthesis-tracker/api/v1/ws [get]
func (h *WebSocketHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed: %v", err)
		return
	}

	session := &wsSession{
		conn: conn,
		out:  make(chan dto.WSServerMessage, 32),
		done: make(chan struct{}),
		subs: make(map[string]*broadcast.Subscription),
	}

	go h.writeLoop(session)
	h.readLoop(session)
}

// readLoop 处理客户端控制消息，连接断开时清理全部订阅
func (h *WebSocketHandler) readLoop(s *wsSession) {
	defer h.teardown(s)

	for {
		var msg dto.WSClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error: %v", err)
			}
			return
		}

		switch msg.Type {
		case dto.WSTypeSubscribe:
			h.subscribe(s, msg.JobID)
		case dto.WSTypeUnsubscribe:
			h.unsubscribe(s, msg.JobID)
		case dto.WSTypePing:
			h.heartbeat(s)
			s.send(dto.WSServerMessage{Type: dto.WSTypePong})
		default:
			s.send(dto.WSServerMessage{Type: dto.WSTypeError, Message: "unknown message type: " + msg.Type})
		}
	}
}

// writeLoop 单写协程，gorilla连接不允许并发写
func (h *WebSocketHandler) writeLoop(s *wsSession) {
	for {
		select {
		case msg := <-s.out:
			if err := s.conn.WriteJSON(msg); err != nil {
				h.logger.Debug("websocket write failed: %v", err)
				return
			}
		case <-s.done:
			return
		}
	}
}

// subscribe 订阅任务进度，订阅成功立即收到当前快照
func (h *WebSocketHandler) subscribe(s *wsSession, jobID string) {
	if jobID == "" {
		s.send(dto.WSServerMessage{Type: dto.WSTypeError, Message: "jobId is required"})
		return
	}

	s.mu.Lock()
	if _, exists := s.subs[jobID]; exists {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	sub, err := h.bus.Subscribe(jobID)
	if err != nil {
		s.send(dto.WSServerMessage{Type: dto.WSTypeError, JobID: jobID, Message: err.Error()})
		return
	}

	s.mu.Lock()
	s.subs[jobID] = sub
	s.mu.Unlock()
	h.metrics.ActiveSubscribers.Add(context.Background(), 1)

	go h.forward(s, sub)
}

// unsubscribe 取消订阅，jobID未订阅时静默返回
func (h *WebSocketHandler) unsubscribe(s *wsSession, jobID string) {
	s.mu.Lock()
	sub, exists := s.subs[jobID]
	if exists {
		delete(s.subs, jobID)
	}
	s.mu.Unlock()

	if exists {
		h.bus.Unsubscribe(sub.ID)
		h.metrics.ActiveSubscribers.Add(context.Background(), -1)
	}
}

// heartbeat 续活本连接的全部订阅
func (h *WebSocketHandler) heartbeat(s *wsSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		h.bus.Heartbeat(sub.ID)
	}
}

// forward 把一个订阅的进度更新转发到连接的出站队列，
// 订阅通道关闭（任务终态或被清理）时退出。
func (h *WebSocketHandler) forward(s *wsSession, sub *broadcast.Subscription) {
	for {
		select {
		case job, ok := <-sub.C:
			if !ok {
				return
			}
			s.send(dto.WSServerMessage{Type: dto.WSTypeProgress, JobID: sub.JobID, Data: job})
		case <-s.done:
			return
		}
	}
}

// teardown 连接断开时注销全部订阅并关闭连接
func (h *WebSocketHandler) teardown(s *wsSession) {
	s.once.Do(func() {
		close(s.done)
	})

	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[string]*broadcast.Subscription)
	s.mu.Unlock()

	for _, sub := range subs {
		h.bus.Unsubscribe(sub.ID)
		h.metrics.ActiveSubscribers.Add(context.Background(), -1)
	}
	s.conn.Close()
}

// send 非阻塞入队，连接已关闭或队列积压时丢弃
func (s *wsSession) send(msg dto.WSServerMessage) {
	select {
	case s.out <- msg:
	case <-s.done:
	default:
	}
}
