package transport

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	collectionport "storeAdminWs/internal/modules/collection/application/port"
	ordersusecase "storeAdminWs/internal/modules/orders/application/usecase"
	syncport "storeAdminWs/internal/modules/sync/application/port"
	"storeAdminWs/internal/modules/sync/domain"
	"storeAdminWs/internal/modules/sync/infrastructure"
	"storeAdminWs/internal/shared/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SessionDeps bundles what a tab session needs: the hub for lifecycle, the
// bus for refresh routing, the collection client and the order enrichment
// pipeline for list fetches.
type SessionDeps struct {
	Hub        *infrastructure.Hub
	Bus        syncport.Bus
	Client     collectionport.Client
	Orders     *ordersusecase.EnrichOrdersUseCase
	Validator  auth.TokenValidator
	SendBuffer int
}

// NewWebsocketHandler serves /ws/admin/:entity/:token. Each accepted
// connection is one browser tab watching one entity's list: it gets its own
// paging controller and a bus subscription that excludes its own mutations.
func NewWebsocketHandler(deps SessionDeps) func(echo.Context) error {
	return func(c echo.Context) error {
		entity := domain.NormalizeEntity(c.Param("entity"))
		if entity == "" {
			slog.Warn("ws rejected, unknown entity", slog.String("entity", c.Param("entity")))
			return echo.NewHTTPError(http.StatusNotFound, "entity not supported")
		}

		token := strings.TrimSpace(c.Param("token"))
		if token == "" || token == "-" {
			token = auth.ExtractToken(c.Request(), "token")
		}
		claims, err := deps.Validator.Validate(token)
		if err != nil {
			status := http.StatusUnauthorized
			message := "invalid token"
			if errors.Is(err, auth.ErrMissingToken) {
				status = http.StatusBadRequest
				message = "missing token"
			}
			slog.Warn("ws rejected, token validation failed", slog.String("entity", entity), slog.Any("error", err))
			return echo.NewHTTPError(status, message)
		}

		// The tab id is the client's sync identity. Tabs that do not send
		// one still get a stable per-connection identity so origin
		// exclusion keeps working.
		tabID := strings.TrimSpace(c.QueryParam("tab"))
		if tabID == "" {
			tabID = uuid.NewString()
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws upgrade failed", slog.String("entity", entity), slog.Any("error", err))
			return err
		}

		userID := claims.RegisteredClaims.Subject
		session := newSession(deps, entity, tabID)
		client := infrastructure.NewClient(deps.Hub, conn, tabID, userID, entity, deps.SendBuffer, session.handleCommand)
		session.attach(client)

		go client.WritePump()
		go client.ReadPump()

		slog.Info("ws session connected",
			slog.String("entity", entity),
			slog.String("tabId", tabID),
			slog.String("userId", userID),
		)
		return nil
	}
}
