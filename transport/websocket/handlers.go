package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/usecase"
)

func (that *Server) handleJoinRoom(ctx context.Context, session *usecase.Session, msg *Message) error {
	var payload JoinRoomPayload
	if err := decodePayload(msg, &payload); err != nil {
		return err
	}

	symbol, err := entity.ParseSymbol(payload.RequestedSymbol)
	if err != nil {
		return fmt.Errorf("invalid requested_symbol: %w", err)
	}

	return that.game.JoinRoom(ctx, session, usecase.JoinRequest{
		RoomID:          payload.RoomID,
		PlayerName:      payload.PlayerName,
		RequestedSymbol: symbol,
	})
}

func (that *Server) handlePlayerReady(ctx context.Context, session *usecase.Session, msg *Message) error {
	var payload RoomPayload
	if err := decodeOptionalPayload(msg, &payload); err != nil {
		return err
	}

	return that.game.PlayerReady(ctx, session, payload.RoomID)
}

// handleMakeMove answers a rejected move with move_rejected instead of a generic error.
func (that *Server) handleMakeMove(ctx context.Context, session *usecase.Session, msg *Message) error {
	log := that.logger.With("method", "handleMakeMove", "session_id", session.ID)

	var payload MakeMovePayload
	if err := decodePayload(msg, &payload); err != nil {
		return err
	}

	if payload.X == nil || payload.Y == nil {
		return fmt.Errorf("%w: x and y are required", apperror.ErrProtocol)
	}

	coordinate, err := parseCoordinate(*payload.X, *payload.Y)
	if err == nil {
		err = that.game.MakeMove(ctx, session, payload.RoomID, coordinate)
	}

	if err != nil {
		log.Info("move rejected", "room_id", session.RoomID(), "x", payload.X.String(), "y", payload.Y.String(), "error", err)

		session.Notify(entity.MoveRejected{
			Reason: apperror.Reason(err),
			X:      *payload.X,
			Y:      *payload.Y,
		})
	}

	return nil
}

func (that *Server) handleChat(ctx context.Context, session *usecase.Session, msg *Message) error {
	var payload ChatPayload
	if err := decodePayload(msg, &payload); err != nil {
		return err
	}

	return that.game.Chat(ctx, session, payload.RoomID, payload.Text)
}

func (that *Server) handleLeave(ctx context.Context, session *usecase.Session, msg *Message) error {
	var payload RoomPayload
	if err := decodeOptionalPayload(msg, &payload); err != nil {
		return err
	}

	return that.game.Leave(ctx, session, payload.RoomID)
}

// sendError reports a failed request to its sender only.
func (that *Server) sendError(session *usecase.Session, action string, err error) {
	reason := apperror.Reason(err)

	message := err.Error()
	if reason == apperror.ReasonInternal {
		message = "internal server error"
	}

	session.Notify(entity.ErrorEvent{
		RequestAction: action,
		Reason:        reason,
		Message:       message,
	})
}

func decodePayload(msg *Message, target any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w: %s requires a payload", apperror.ErrProtocol, msg.Action)
	}

	if err := json.Unmarshal(msg.Payload, target); err != nil {
		return fmt.Errorf("%w: invalid %s payload: %v", apperror.ErrProtocol, msg.Action, err)
	}

	return nil
}

func decodeOptionalPayload(msg *Message, target any) error {
	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return nil
	}

	return decodePayload(msg, target)
}
