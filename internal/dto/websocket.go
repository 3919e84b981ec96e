// internal/dto/websocket.go - WebSocket进度推送消息结构定义
package dto

import "synthesis-tracker/internal/model"

// WebSocket消息类型
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypeProgress    = "progress"
	WSTypePong        = "pong"
	WSTypeError       = "error"
)

// WSClientMessage 客户端发来的控制消息
type WSClientMessage struct {
	Type  string `json:"type"`
	JobID string `json:"jobId,omitempty"`
}

// WSServerMessage 服务端推送的消息
type WSServerMessage struct {
	Type    string              `json:"type"`
	JobID   string              `json:"jobId,omitempty"`
	Data    *model.SynthesisJob `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
}
