package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/money-tracker/backend/internal/application/usecase/analytics"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
	"github.com/money-tracker/backend/internal/domain/valueobject"
	"github.com/money-tracker/backend/internal/integration/entrypoint/dto"
)

// LiveStreamConfig tunes the analytics WebSocket.
type LiveStreamConfig struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	// AllowedOrigins lists accepted Origin headers; "*" accepts any.
	AllowedOrigins []string
}

// AnalyticsController serves the analytics views, one-shot and live.
type AnalyticsController struct {
	getUseCase   *analytics.GetAnalyticsUseCase
	statsUseCase *analytics.GetSummaryStatsUseCase
	watchUseCase *analytics.WatchAnalyticsUseCase
	live         LiveStreamConfig
	upgrader     websocket.Upgrader
}

// NewAnalyticsController creates a new analytics controller instance.
func NewAnalyticsController(
	getUseCase *analytics.GetAnalyticsUseCase,
	statsUseCase *analytics.GetSummaryStatsUseCase,
	watchUseCase *analytics.WatchAnalyticsUseCase,
	live LiveStreamConfig,
) *AnalyticsController {
	if live.WriteTimeout <= 0 {
		live.WriteTimeout = 10 * time.Second
	}
	if live.PingInterval <= 0 {
		live.PingInterval = 30 * time.Second
	}

	c := &AnalyticsController{
		getUseCase:   getUseCase,
		statsUseCase: statsUseCase,
		watchUseCase: watchUseCase,
		live:         live,
	}
	c.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     c.checkOrigin,
	}
	return c
}

// Get handles GET /analytics requests.
func (c *AnalyticsController) Get(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	selector := rangeParam(ctx)
	output, err := c.getUseCase.Execute(ctx.Request.Context(), analytics.GetAnalyticsInput{
		UserID: userID,
		Range:  selector,
	})
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToAnalyticsResponse(selector, output.Analytics, output.SkippedRecords))
}

// Stats handles GET /analytics/stats requests.
func (c *AnalyticsController) Stats(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	output, err := c.statsUseCase.Execute(ctx.Request.Context(), analytics.GetSummaryStatsInput{UserID: userID})
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSummaryStatsResponse(output))
}

// Live handles GET /analytics/live, streaming recomputed analytics over a WebSocket.
// Range and store failures before the upgrade are answered as plain HTTP errors.
func (c *AnalyticsController) Live(ctx *gin.Context) {
	userID, ok := authenticatedUserID(ctx)
	if !ok {
		return
	}

	selector := rangeParam(ctx)
	watch, err := c.watchUseCase.Execute(ctx.Request.Context(), analytics.WatchAnalyticsInput{
		UserID: userID,
		Range:  selector,
	})
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}
	defer watch.Stop()

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Warn("Failed to upgrade analytics stream", "error", err, "userID", userID)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go c.readPump(conn, closed)

	ticker := time.NewTicker(c.live.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case update, ok := <-watch.Updates():
			if !ok {
				c.writeClose(conn)
				return
			}
			if err := c.writeUpdate(conn, selector, update); err != nil {
				slog.Warn("Failed to write analytics update", "error", err, "userID", userID)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(c.live.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames and closes closed once the client goes away.
func (c *AnalyticsController) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	pongWait := 2 * c.live.PingInterval
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Unexpected analytics stream close", "error", err)
			}
			return
		}
	}
}

func (c *AnalyticsController) writeUpdate(conn *websocket.Conn, selector string, update analytics.AnalyticsUpdate) error {
	message := dto.LiveMessage{Type: dto.LiveMessageAnalytics}
	if update.Err != nil {
		_, body := analyticsErrorResponse(update.Err)
		message = dto.LiveMessage{Type: dto.LiveMessageError, Error: &body}
	} else if update.Analytics != nil {
		data := dto.ToAnalyticsResponse(selector, *update.Analytics, update.SkippedRecords)
		message.Data = &data
	}

	if err := conn.SetWriteDeadline(time.Now().Add(c.live.WriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(message)
}

func (c *AnalyticsController) writeClose(conn *websocket.Conn) {
	deadline := time.Now().Add(c.live.WriteTimeout)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}

func (c *AnalyticsController) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range c.live.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// handleAnalyticsError handles analytics errors and returns appropriate HTTP responses.
func (c *AnalyticsController) handleAnalyticsError(ctx *gin.Context, err error) {
	statusCode, body := analyticsErrorResponse(err)
	if statusCode >= http.StatusInternalServerError {
		slog.Error("Analytics request failed", "error", err)
	}
	ctx.JSON(statusCode, body)
}

func analyticsErrorResponse(err error) (int, dto.ErrorResponse) {
	var analyticsErr *domainerror.AnalyticsError
	if !errors.As(err, &analyticsErr) {
		return http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
			Code:  string(domainerror.ErrCodeAnalyticsInternalError),
		}
	}

	statusCode := http.StatusInternalServerError
	switch analyticsErr.Code {
	case domainerror.ErrCodeInvalidRange:
		statusCode = http.StatusBadRequest
	case domainerror.ErrCodeAnalyticsUnavailable:
		statusCode = http.StatusServiceUnavailable
	}
	return statusCode, dto.ErrorResponse{
		Error: analyticsErr.Message,
		Code:  string(analyticsErr.Code),
	}
}

func rangeParam(ctx *gin.Context) string {
	var query dto.AnalyticsQuery
	_ = ctx.ShouldBindQuery(&query)
	if query.Range == "" {
		return string(valueobject.WindowLastSixMonths)
	}
	return query.Range
}
