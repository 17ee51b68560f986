package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/duelrooms-backend/internal/dotsboxes"
	"github.com/rocketscienceinc/duelrooms-backend/internal/pkg"
	"github.com/rocketscienceinc/duelrooms-backend/internal/usecase"
)

type gameManager interface {
	Join(ctx context.Context, connectionID string, req usecase.JoinRequest) error
	Leave(ctx context.Context, connectionID string)
	MakeDotsBoxesMove(ctx context.Context, connectionID, roomCode string, snapshot *dotsboxes.Snapshot) error
	MakeTicTacToeMove(ctx context.Context, connectionID, roomCode string, position int, mark string) error
	RequestGameState(ctx context.Context, connectionID, roomCode string) error
	RestartGame(ctx context.Context, connectionID, roomCode string) error
	RelaySignal(ctx context.Context, connectionID, roomCode string, data json.RawMessage) error
}

type Server struct {
	logger   *slog.Logger
	game     gameManager
	hub      *Hub
	upgrader websocket.Upgrader

	handlers map[string]func(ctx context.Context, client *Client, message *Message) error
}

func New(logger *slog.Logger, game gameManager, hub *Hub, allowedOrigin string) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		game:   game,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},

		handlers: make(map[string]func(context.Context, *Client, *Message) error),
	}

	server.handlers[actionJoinRoom] = server.handleJoinRoom
	server.handlers[actionMakeMove] = server.handleMakeMove
	server.handlers[actionTicTacToeMove] = server.handleTicTacToeMove
	server.handlers[actionRequestGameState] = server.handleRequestGameState
	server.handlers[actionRestartGame] = server.handleRestartGame
	server.handlers[actionSignal] = server.handleSignal

	return server
}

// ServeHTTP - upgrades the request and serves the connection until it closes.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	ctx := context.WithoutCancel(req.Context())
	client := newClient(that.logger, pkg.GenerateConnectionID(), conn)

	that.hub.register(client)
	log.Info("connection established", "connection", client.id)

	go client.writePump()

	client.readPump(func(data []byte) {
		that.handleMessage(ctx, client, data)
	})

	that.game.Leave(ctx, client.id)
	that.hub.unregister(client)

	log.Info("connection closed", "connection", client.id)
}

// handleMessage - decodes the envelope and runs the action handler.
func (that *Server) handleMessage(ctx context.Context, client *Client, data []byte) {
	log := that.logger.With("method", "handleMessage", "connection", client.id)

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Warn("failed to unmarshal message", "error", err)
		that.rejectPayload(client, err)
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action", "action", message.Action)
		return
	}

	if err := handler(ctx, client, &message); err != nil {
		log.Info("action rejected", "action", message.Action, "error", err)
	}
}
