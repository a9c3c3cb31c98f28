package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/zhanghaozz/nfs-ganesha/internal/events"
)

// registerTailRoutes registers the recent-lines endpoint backed by the
// memory facility.
func (s *Server) registerTailRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "tail-log",
		Method:      http.MethodGet,
		Path:        "/api/log/tail",
		Summary:     "Tail Log",
		Description: "Get the most recent rendered log lines retained by the memory facility",
		Tags:        []string{"logs"},
		Errors:      []int{404},
	}, func(ctx context.Context, input *struct {
		Count int `query:"count" default:"100" minimum:"1" doc:"Maximum number of lines to return"`
	}) (*TailResponse, error) {
		if s.tail == nil {
			return nil, huma.Error404NotFound("no memory facility configured")
		}
		lines := s.tail.Lines()
		if input.Count > 0 && len(lines) > input.Count {
			lines = lines[len(lines)-input.Count:]
		}
		resp := &TailResponse{}
		resp.Body.Lines = lines
		return resp, nil
	})
}

// registerSSERoutes registers the native Huma SSE endpoint streaming
// level and facility change events.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Change Event Stream",
		Description: "Real-time stream of level changes, facility lifecycle changes and config reloads",
		Tags:        []string{"events"},
	}, map[string]any{
		"level-changed":    events.LevelChangedEvent{},
		"facility-changed": events.FacilityChangedEvent{},
		"config-reloaded":  events.ConfigReloadedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Event channel for this connection
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.LevelChangedEvent](s.bus, eventCh),
			events.SubscribeToChannel[events.FacilityChangedEvent](s.bus, eventCh),
			events.SubscribeToChannel[events.ConfigReloadedEvent](s.bus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Initial connection confirmation
		if err := send.Data(events.ConfigReloadedEvent{
			Path:      "",
			Errors:    0,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					// Connection failed, clean up and exit
					return
				}
			}
		}
	})
}
