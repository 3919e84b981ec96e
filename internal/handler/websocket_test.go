package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthesis-tracker/internal/broadcast"
	"synthesis-tracker/internal/dto"
	"synthesis-tracker/internal/model"
	"synthesis-tracker/internal/registry"
	"synthesis-tracker/pkg/metrics"
)

// setupTestWS 起一个只挂/ws路由的测试服务器，返回可直连的ws地址
func setupTestWS(t *testing.T) (registry.JobRegistry, *broadcast.ProgressBus, string, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jobRegistry := registry.NewJobRegistry(mockLogger)
	bus := broadcast.NewProgressBus(jobRegistry, 16, mockLogger)

	trackerMetrics, err := metrics.NewTrackerMetrics()
	require.NoError(t, err)

	wsHandler := NewWebSocketHandler(bus, trackerMetrics, mockLogger)
	engine := gin.New()
	engine.GET("/ws", wsHandler.Serve)

	server := httptest.NewServer(engine)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	return jobRegistry, bus, wsURL, server.Close
}

func dialTestWS(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func readServerMessage(t *testing.T, conn *websocket.Conn) dto.WSServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg dto.WSServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketSubscribeDeliversSnapshotAndUpdates(t *testing.T) {
	jobRegistry, bus, wsURL, teardown := setupTestWS(t)
	defer teardown()

	job, err := jobRegistry.Submit("run-1")
	require.NoError(t, err)

	conn := dialTestWS(t, wsURL)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(dto.WSClientMessage{Type: dto.WSTypeSubscribe, JobID: job.ID}))

	// 订阅后立即收到当前快照
	msg := readServerMessage(t, conn)
	assert.Equal(t, dto.WSTypeProgress, msg.Type)
	assert.Equal(t, job.ID, msg.JobID)
	require.NotNil(t, msg.Data)
	assert.Equal(t, "queued", string(msg.Data.Stage))

	// 阶段推进通过总线到达连接
	advanced, err := jobRegistry.Advance(job.ID, registry.StageUpdate{Stage: "analyzing", Percentage: 30})
	require.NoError(t, err)
	bus.Publish(advanced)

	msg = readServerMessage(t, conn)
	assert.Equal(t, "analyzing", string(msg.Data.Stage))
	assert.Equal(t, 30, msg.Data.Percentage)
}

func TestWebSocketSubscribeUnknownJob(t *testing.T) {
	_, _, wsURL, teardown := setupTestWS(t)
	defer teardown()

	conn := dialTestWS(t, wsURL)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(dto.WSClientMessage{Type: dto.WSTypeSubscribe, JobID: "missing"}))
	msg := readServerMessage(t, conn)
	assert.Equal(t, dto.WSTypeError, msg.Type)
	assert.Equal(t, "missing", msg.JobID)
}

func TestWebSocketPingPong(t *testing.T) {
	_, _, wsURL, teardown := setupTestWS(t)
	defer teardown()

	conn := dialTestWS(t, wsURL)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(dto.WSClientMessage{Type: dto.WSTypePing}))
	msg := readServerMessage(t, conn)
	assert.Equal(t, dto.WSTypePong, msg.Type)
}

func TestWebSocketUnknownMessageType(t *testing.T) {
	_, _, wsURL, teardown := setupTestWS(t)
	defer teardown()

	conn := dialTestWS(t, wsURL)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(dto.WSClientMessage{Type: "shout"}))
	msg := readServerMessage(t, conn)
	assert.Equal(t, dto.WSTypeError, msg.Type)
}

func TestWebSocketDisconnectCleansSubscriptions(t *testing.T) {
	jobRegistry, bus, wsURL, teardown := setupTestWS(t)
	defer teardown()

	job, err := jobRegistry.Submit("run-1")
	require.NoError(t, err)

	conn := dialTestWS(t, wsURL)
	require.NoError(t, conn.WriteJSON(dto.WSClientMessage{Type: dto.WSTypeSubscribe, JobID: job.ID}))
	readServerMessage(t, conn) // 快照

	conn.Close()

	// 连接断开等价于取消订阅
	assert.Eventually(t, func() bool {
		return bus.SubscriberCount(job.ID) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketTerminalStageEndsStream(t *testing.T) {
	jobRegistry, bus, wsURL, teardown := setupTestWS(t)
	defer teardown()

	job, err := jobRegistry.Submit("run-1")
	require.NoError(t, err)

	conn := dialTestWS(t, wsURL)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(dto.WSClientMessage{Type: dto.WSTypeSubscribe, JobID: job.ID}))
	readServerMessage(t, conn) // 快照

	failed, err := jobRegistry.Fail(job.ID, &model.SynthesisError{Message: "budget exhausted"})
	require.NoError(t, err)
	bus.Publish(failed)

	msg := readServerMessage(t, conn)
	assert.Equal(t, dto.WSTypeProgress, msg.Type)
	assert.Equal(t, "error", string(msg.Data.Stage))

	// 终态推送后服务端关闭该订阅，不再有更多进度消息
	assert.Eventually(t, func() bool {
		return bus.SubscriberCount(job.ID) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
