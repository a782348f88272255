package api

import (
	"encoding/json"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
)

// subscribePipelineHandler implements spec.md §6's
// subscribe_pipeline(pipeline_id) → event stream: it upgrades to a
// WebSocket, seeds the client with the pipeline's current snapshot (via
// progress.Bus.Subscribe), and relays each Event as one JSON frame until
// the subscription closes on a terminal event or the client disconnects.
func (s *Server) subscribePipelineHandler(c *gin.Context) {
	pipelineID := c.Param("pipeline_id")

	events, unsubscribe, err := s.ProgressBus.Subscribe(c.Request.Context(), pipelineID)
	if err != nil {
		writeServiceError(c, s.Logger, err)
		return
	}
	defer unsubscribe()

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.Logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(c.Request.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				s.Logger.Error("marshal progress event", "error", err)
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				return
			}
			if ev.Terminal() {
				conn.Close(websocket.StatusNormalClosure, "pipeline finished")
				return
			}
		}
	}
}
