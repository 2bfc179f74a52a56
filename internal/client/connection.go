package client

import (
	"context"
	"encoding/json"
	"log/slog"

	"ctchen222/tictactoe-grid/pkg/proto"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Send writes a message to the browser.
func (c *Client) Send(ctx context.Context, message *proto.ServerToClientMessage) {
	_, span := tracer.Start(ctx, "client.Send", trace.WithAttributes(
		attribute.String("session.id", c.SessionID),
		attribute.String("message.type", message.Type),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	if err := c.write(websocket.TextMessage, data); err != nil {
		slog.ErrorContext(ctx, "error writing message to client", "session.id", c.SessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error writing message to client")
	}
}

// Run opens a session for the page, then reads and handles messages until
// the connection fails. The session is closed on the way out.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session, err := c.sessions.Open(ctx)
	if err != nil {
		c.conn.Close()
		return err
	}
	c.SessionID = session.ID

	ctx, span := tracer.Start(ctx, "client.Run", trace.WithAttributes(
		attribute.String("session.id", c.SessionID),
	))
	defer span.End()

	defer func() {
		c.conn.Close()
		if err := c.sessions.Close(context.WithoutCancel(ctx), c.SessionID); err != nil {
			slog.WarnContext(ctx, "Failed to close session", "session.id", c.SessionID, "error", err)
		}
		slog.InfoContext(ctx, "Client disconnected.", "session.id", c.SessionID)
	}()

	go c.heartbeat(ctx, heartbeatInterval)

	c.Send(ctx, proto.NewStateMessage(session.Game))

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Client connection error", "session.id", c.SessionID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Client connection error")
			}
			return nil
		}
		c.HandleMessage(ctx, msg)
	}
}
