package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/duelarena/server/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodePlayerNotFound    = "PLAYER_NOT_FOUND"
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeNotInRoom         = "NOT_IN_ROOM"
	CodeRoomFull          = "ROOM_FULL"
	CodeRoomNotWaiting    = "ROOM_NOT_WAITING"
	CodeRoomNotReady      = "ROOM_NOT_READY"
	CodeWrongOccupancy    = "WRONG_OCCUPANCY"
	CodeMatchNotStarted   = "MATCH_NOT_STARTED"
	CodeNotYourTurn       = "NOT_YOUR_TURN"
	CodeUnknownAction     = "UNKNOWN_ACTION"
	CodeAbilityNotFound   = "ABILITY_NOT_FOUND"
	CodeInsufficientMana  = "INSUFFICIENT_MANA"
	CodeCharacterNotFound = "CHARACTER_NOT_FOUND"
	CodeEmptyMessage      = "EMPTY_MESSAGE"
	CodeMessageTooLong    = "MESSAGE_TOO_LONG"
	CodeConflict          = "CONFLICT"
	CodeInternalError     = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Code returns the wire code an error maps to, for transports that
// carry the code without an HTTP status (the websocket gateway).
func Code(err error) string {
	return toHTTPError(err).apiError.Code
}

// Message returns the human-readable message an error maps to
func Message(err error) string {
	return toHTTPError(err).apiError.Message
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrNotInRoom):
		return &httpError{http.StatusNotFound, APIError{CodeNotInRoom, "Not in a room"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room is full"}}
	case errors.Is(err, model.ErrRoomNotWaiting):
		return &httpError{http.StatusConflict, APIError{CodeRoomNotWaiting, "Room is not accepting players"}}
	case errors.Is(err, model.ErrRoomNotReady):
		return &httpError{http.StatusConflict, APIError{CodeRoomNotReady, "Room is not ready to start"}}
	case errors.Is(err, model.ErrWrongOccupancy):
		return &httpError{http.StatusConflict, APIError{CodeWrongOccupancy, "Room does not have two players"}}
	case errors.Is(err, model.ErrMatchNotStarted):
		return &httpError{http.StatusConflict, APIError{CodeMatchNotStarted, "No match in progress"}}
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrUnknownAction):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownAction, "Unknown action type"}}
	case errors.Is(err, model.ErrAbilityNotFound):
		return &httpError{http.StatusBadRequest, APIError{CodeAbilityNotFound, "Ability not found"}}
	case errors.Is(err, model.ErrInsufficientMana):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientMana, "Not enough mana"}}
	case errors.Is(err, model.ErrCharacterNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeCharacterNotFound, "Character not found"}}
	case errors.Is(err, model.ErrEmptyMessage):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyMessage, "Message is empty"}}
	case errors.Is(err, model.ErrMessageTooLong):
		return &httpError{http.StatusBadRequest, APIError{CodeMessageTooLong, "Message is too long"}}
	case errors.Is(err, model.ErrConflict):
		return &httpError{http.StatusConflict, APIError{CodeConflict, "Conflicting operation in progress, try again"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
