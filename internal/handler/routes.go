package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, periodHandler *PeriodHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	periods := api.Group("/periods/:year/:month")
	periods.GET("/summary", periodHandler.GetSummary)
	periods.GET("/budget", periodHandler.GetBudget)
	periods.GET("/records/:collection", periodHandler.GetRecords)

	// Live updates
	e.GET("/ws", wsHandler.HandleWS)
}
