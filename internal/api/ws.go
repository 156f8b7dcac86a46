package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/voxel-world/internal/world"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	defaultStreamInterval = time.Second
	minStreamInterval     = 50 * time.Millisecond
	wsWriteTimeout        = 10 * time.Second
	wsPingPeriod          = 30 * time.Second
)

// Конфигурация WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // инспекционный API, доступ ограничивается снаружи
	},
}

// StatsMessage снимок мира, отправляемый подписчику потока
type StatsMessage struct {
	Type     string      `json:"type"`
	Sequence uint64      `json:"seq"`
	Time     int64       `json:"time"`
	World    world.Stats `json:"world"`
}

// handleStatsStream отдаёт world.Stats по WebSocket с периодом interval_ms.
// Сообщение уходит только при изменении снимка, но не реже раза в пинг.
func (rs *RestServer) handleStatsStream(c *gin.Context) {
	interval := defaultStreamInterval
	if raw := c.Query("interval_ms"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "interval_ms должен быть положительным целым"})
			return
		}
		interval = max(time.Duration(ms)*time.Millisecond, minStreamInterval)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		rs.logger.Warn("Не удалось открыть WebSocket: %v", err)
		return
	}
	defer conn.Close()

	// Читатель нужен только для обработки close/pong от клиента.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					rs.logger.Debug("WebSocket закрыт: %v", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	var (
		seq  uint64
		last world.Stats
	)
	send := func(force bool) bool {
		stats := rs.world.Stats()
		if !force && seq > 0 && stats == last {
			return true
		}
		last = stats
		seq++
		data, err := json.Marshal(StatsMessage{Type: "STATS", Sequence: seq, Time: time.Now().UnixMilli(), World: stats})
		if err != nil {
			rs.logger.Error("Ошибка кодирования статистики: %v", err)
			return false
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteMessage(websocket.TextMessage, data) == nil
	}

	if !send(true) {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			if !send(false) {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
