package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/mwalimu/core/chat"
)

type chatRequest struct {
	Prompt string `json:"prompt"`
}

func registerChatAPI(g *echo.Group, relay *chat.Relay, m *metrics) {
	g.POST("/chat", relayChat(relay, m))
}

func relayChat(relay *chat.Relay, m *metrics) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var req chatRequest
		if err := ctx.Bind(&req); err != nil {
			m.chatTotal.WithLabelValues(resultInvalid).Inc()
			return err
		}

		reply, err := relay.Relay(ctx.Request().Context(), req.Prompt)
		m.chatTotal.WithLabelValues(result(err)).Inc()
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, reply)
	}
}
