package transport

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	listingusecase "storeAdminWs/internal/modules/listing/application/usecase"
	"storeAdminWs/internal/modules/sync/domain"
	"storeAdminWs/internal/modules/sync/infrastructure"
)

// session binds one tab to one entity's paging controller. The controller
// pushes every visible state transition back over the websocket; refresh
// signals from other tabs reset the controller to the first page.
type session struct {
	entity string
	tabID  string
	deps   SessionDeps

	mu       sync.Mutex
	client   *infrastructure.Client
	controls listingusecase.Commands
}

func newSession(deps SessionDeps, entity, tabID string) *session {
	return &session{entity: entity, tabID: tabID, deps: deps}
}

// attach wires the controller, the bus subscription and the close hook for
// the connected client. The controller is created here, after the client
// exists, so state pushes always have somewhere to go.
func (s *session) attach(client *infrastructure.Client) {
	s.mu.Lock()
	s.client = client
	s.controls = s.newController(client)
	s.mu.Unlock()

	unsubscribe := s.deps.Bus.Subscribe(s.entity, s.tabID, func() {
		client.SendMessage(domain.BuildRefreshMessage(s.entity, time.Now()))
		s.commands().ResetAndRefresh()
	})

	client.AddCloseHook(func(*infrastructure.Client) {
		unsubscribe()
		s.commands().Close()
	})

	// Initial page load.
	s.commands().Refresh()
}

func (s *session) commands() listingusecase.Commands {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controls
}

func (s *session) newController(client *infrastructure.Client) listingusecase.Commands {
	switch s.entity {
	case domain.EntityUser:
		return newEntityController(s.entity, client, s.deps.Client.FetchUsers)
	case domain.EntityProduct:
		return newEntityController(s.entity, client, s.deps.Client.FetchProducts)
	default:
		return newEntityController(s.entity, client, s.deps.Orders.ListOrders)
	}
}

func newEntityController[T any](
	entity string,
	client *infrastructure.Client,
	fetch listingusecase.FetchFunc[T],
) listingusecase.Commands {
	return listingusecase.NewController(fetch, func(state listingusecase.State[T]) {
		client.SendMessage(domain.BuildListMessage(entity, state, time.Now()))
	})
}

type pagePayload struct {
	Page int `json:"page"`
}

type pageSizePayload struct {
	PageSize int `json:"pageSize"`
}

type sortPayload struct {
	Field string `json:"field"`
}

type filterPayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// handleCommand processes one inbound tab command. Paging commands feed the
// controller; the resulting state arrives asynchronously as a list push.
func (s *session) handleCommand(client *infrastructure.Client, cmd infrastructure.Command) {
	controls := s.commands()
	switch cmd.Action {
	case "page":
		var p pagePayload
		if !s.decode(client, cmd, &p) {
			return
		}
		controls.SetPage(p.Page)
	case "pageSize":
		var p pageSizePayload
		if !s.decode(client, cmd, &p) {
			return
		}
		controls.SetPageSize(p.PageSize)
	case "sort":
		var p sortPayload
		if !s.decode(client, cmd, &p) {
			return
		}
		controls.SetSort(p.Field)
	case "filter":
		var p filterPayload
		if !s.decode(client, cmd, &p) {
			return
		}
		controls.SetFilter(p.Key, p.Value)
	case "list", "refresh":
		controls.Refresh()
	case "ping":
		client.SendMessage(&domain.Message{
			Topic:     domain.Topic(s.entity),
			Entity:    s.entity,
			Action:    domain.ActionPong,
			Timestamp: time.Now().UTC(),
		})
	default:
		slog.Debug("ws unknown command", slog.String("entity", s.entity), slog.String("tabId", s.tabID), slog.String("action", cmd.Action))
		client.SendMessage(&domain.Message{
			Topic:     domain.Topic(s.entity),
			Entity:    s.entity,
			Action:    domain.ActionError,
			Data:      map[string]string{"error": "unsupported action " + cmd.Action},
			Timestamp: time.Now().UTC(),
		})
	}
}

func (s *session) decode(client *infrastructure.Client, cmd infrastructure.Command, into any) bool {
	if len(cmd.Payload) == 0 {
		return true
	}
	if err := json.Unmarshal(cmd.Payload, into); err != nil {
		slog.Warn("ws command decode failed", slog.String("entity", s.entity), slog.String("action", cmd.Action), slog.Any("error", err))
		client.SendMessage(&domain.Message{
			Topic:     domain.Topic(s.entity),
			Entity:    s.entity,
			Action:    domain.ActionError,
			Data:      map[string]string{"error": "invalid payload for " + cmd.Action},
			Timestamp: time.Now().UTC(),
		})
		return false
	}
	return true
}
