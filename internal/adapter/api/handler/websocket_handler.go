package handler

import (
	"context"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"civicvoice/internal/domain/entity"
	ws "civicvoice/internal/infrastructure/websocket"
	"civicvoice/internal/usecase"
	"civicvoice/pkg/logger"
)

type WebSocketHandler struct {
	wsManager        *ws.Manager
	grievanceUseCase *usecase.GrievanceUseCase
	adminUseCase     *usecase.AdminUseCase
	communityUseCase *usecase.CommunityUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewWebSocketHandler(
	wsManager *ws.Manager,
	grievanceUseCase *usecase.GrievanceUseCase,
	adminUseCase *usecase.AdminUseCase,
	communityUseCase *usecase.CommunityUseCase,
) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:        wsManager,
		grievanceUseCase: grievanceUseCase,
		adminUseCase:     adminUseCase,
		communityUseCase: communityUseCase,
	}
}

// MyGrievances streams the caller's grievances, newest first.
func (h *WebSocketHandler) MyGrievances(c echo.Context) error {
	uid := c.Get("uid").(string)
	return h.subscribe(c, ws.TopicMyGrievances, func(ctx context.Context, client *ws.Client) error {
		return h.grievanceUseCase.WatchMine(ctx, uid, func(list []*entity.Grievance) {
			client.Push(ws.MessageTypeGrievances, list)
		})
	})
}

// AdminGrievances accepts the same municipality and show_verified query
// parameters as the admin list.
func (h *WebSocketHandler) AdminGrievances(c echo.Context) error {
	input := listInput(c)
	return h.subscribe(c, ws.TopicAdminGrievances, func(ctx context.Context, client *ws.Client) error {
		return h.adminUseCase.WatchAll(ctx, input, func(list []*entity.Grievance) {
			client.Push(ws.MessageTypeGrievances, list)
		})
	})
}

func (h *WebSocketHandler) SocialFeed(c echo.Context) error {
	return h.subscribe(c, ws.TopicSocialFeed, func(ctx context.Context, client *ws.Client) error {
		return h.communityUseCase.WatchFeed(ctx, func(posts []*entity.SocialPost) {
			client.Push(ws.MessageTypeSocialPosts, posts)
		})
	})
}

func (h *WebSocketHandler) subscribe(c echo.Context, topic string, listen func(ctx context.Context, client *ws.Client) error) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		logger.Warn("websocket upgrade failed on %s: %v", topic, err)
		return nil
	}

	uid, _ := c.Get("uid").(string)
	ctx, cancel := context.WithCancel(context.Background())
	client := ws.NewClient(conn, uid, topic, cancel)

	if !h.wsManager.Add(client) {
		// shutting down
		conn.Close()
		return nil
	}

	go client.WritePump()
	go client.ReadPump(h.wsManager)
	go func() {
		if err := listen(ctx, client); err != nil {
			logger.Error("websocket listener for %s stopped: %v", topic, err)
			client.Push(ws.MessageTypeError, "Live updates are unavailable, please reconnect.")
			h.wsManager.Remove(client)
		}
	}()

	return nil
}
