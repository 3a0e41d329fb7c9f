package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Youskoofx/chrono24/internal/notify"
	"github.com/Youskoofx/chrono24/pkg/logger"
)

// EventsHandler streams table change events over Server-Sent Events. It is
// the HTTP face of the change-subscription primitive: clients pick a table
// with ?table= and re-fetch whenever an event arrives.
type EventsHandler struct {
	hub *notify.Hub
}

// NewEventsHandler creates the SSE handler
func NewEventsHandler(hub *notify.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream handles one SSE connection
func (h *EventsHandler) Stream(c echo.Context) error {
	log := logger.FromContext(c)
	table := c.QueryParam("table")

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	events, cancel := h.hub.Subscribe(table)
	defer cancel()

	log.Info("Event stream opened", zap.String("table", table))

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			log.Info("Event stream closed", zap.String("table", table))
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event.Table, payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
