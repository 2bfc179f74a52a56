package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"ctchen222/tictactoe-grid/internal/game"
	"ctchen222/tictactoe-grid/internal/repository"
	"ctchen222/tictactoe-grid/internal/validator"
	"ctchen222/tictactoe-grid/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage handles a message from the browser. It acts as a dispatcher.
func (c *Client) HandleMessage(ctx context.Context, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "client.HandleMessage", trace.WithAttributes(
		attribute.String("session.id", c.SessionID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "session.id", c.SessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		c.Send(ctx, proto.NewErrorMessage("malformed message"))
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from client", "session.id", c.SessionID, "fields", validator.Fields(err), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		c.Send(ctx, proto.NewErrorMessage("invalid message"))
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	var (
		session *repository.Session
		err     error
	)
	switch message.Type {
	case proto.TypeStart:
		session, err = c.handleStart(ctx, &message)
	case proto.TypeMove:
		session, err = c.handleMove(ctx, &message)
	case proto.TypeReset:
		session, err = c.sessions.Reset(ctx, c.SessionID)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Message rejected")
		c.Send(ctx, proto.NewErrorMessage(reason(err)))
		return
	}
	c.Send(ctx, proto.NewStateMessage(session.Game))
}

// handleStart parses the board size field and starts a new game.
func (c *Client) handleStart(ctx context.Context, message *proto.ClientToServerMessage) (*repository.Session, error) {
	size, err := game.ParseSize(message.Size)
	if err != nil {
		return nil, err
	}
	return c.sessions.Start(ctx, c.SessionID, size)
}

// handleMove processes a cell activation.
func (c *Client) handleMove(ctx context.Context, message *proto.ClientToServerMessage) (*repository.Session, error) {
	if len(message.Position) != 2 {
		return nil, game.ErrOutOfBounds
	}
	session, _, err := c.sessions.Move(ctx, c.SessionID, message.Position[0], message.Position[1])
	return session, err
}

// reason is the text shown to the player for a rejected message.
func reason(err error) string {
	for _, known := range []error{
		game.ErrInvalidSize,
		game.ErrOutOfBounds,
		game.ErrCellOccupied,
		game.ErrGameOver,
		game.ErrGameNotStarted,
		repository.ErrSessionNotFound,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal error"
}
