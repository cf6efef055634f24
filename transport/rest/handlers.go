package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/droptoken-backend/internal/apperror"
	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

// validationError is one entry of a 400 response for a payload or parameter that could not be used.
type validationError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type validationResponse struct {
	Detail []validationError `json:"detail"`
}

type listGamesResponse struct {
	Games []string `json:"games"`
}

type createGameResponse struct {
	GameID string `json:"gameId"`
}

type gameResponse struct {
	Players []string     `json:"players"`
	State   entity.State `json:"state"`
}

// finishedGameResponse carries a null winner when the game ended in a draw.
type finishedGameResponse struct {
	Players []string     `json:"players"`
	State   entity.State `json:"state"`
	Winner  *string      `json:"winner"`
}

type placeTokenResponse struct {
	Move string `json:"move"`
}

type moveResponse struct {
	Type   entity.MoveType `json:"type"`
	Player string          `json:"player"`
	Column *int            `json:"column,omitempty"`
}

type movesResponse struct {
	Moves []moveResponse `json:"moves"`
}

// errorStatus maps a sentinel error to the status it is reported with.
type errorStatus struct {
	err    error
	status int
}

type gameHandlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
}

func newGameHandlers(logger *slog.Logger, gameUseCase gameUseCase) *gameHandlers {
	return &gameHandlers{
		logger:      logger.With("component", "game_handlers"),
		gameUseCase: gameUseCase,
	}
}

func (that *gameHandlers) listGames(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "listGames")

	ids, err := that.gameUseCase.ListInProgressGames(r.Context())
	if err != nil {
		that.fail(w, log, err)
		return
	}

	that.writeJSON(w, log, http.StatusOK, listGamesResponse{Games: ids})
}

func (that *gameHandlers) createGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "createGame")

	body, bodyErr := decodeBody(w, r)
	if bodyErr != nil {
		that.writeJSON(w, log, http.StatusBadRequest, validationResponse{Detail: []validationError{*bodyErr}})
		return
	}

	req, errs := decodeCreateGame(body)
	if len(errs) > 0 {
		that.writeJSON(w, log, http.StatusBadRequest, validationResponse{Detail: errs})
		return
	}

	gameID, err := that.gameUseCase.CreateGame(r.Context(), req.Players, req.Rows, req.Columns)
	if err != nil {
		that.fail(w, log, err, errorStatus{apperror.ErrInvalidGameSettings, http.StatusBadRequest})
		return
	}

	that.writeJSON(w, log, http.StatusOK, createGameResponse{GameID: gameID})
}

func (that *gameHandlers) getGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	log := that.logger.With("method", "getGame", "game_id", gameID)

	summary, err := that.gameUseCase.GetGame(r.Context(), gameID)
	if err != nil {
		that.fail(w, log, err)
		return
	}

	if summary.State != entity.StateDone {
		that.writeJSON(w, log, http.StatusOK, gameResponse{Players: summary.Players, State: summary.State})
		return
	}

	resp := finishedGameResponse{Players: summary.Players, State: summary.State}
	if summary.Winner != "" {
		resp.Winner = &summary.Winner
	}

	that.writeJSON(w, log, http.StatusOK, resp)
}

func (that *gameHandlers) deleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	log := that.logger.With("method", "deleteGame", "game_id", gameID)

	if err := that.gameUseCase.DeleteGame(r.Context(), gameID); err != nil {
		that.fail(w, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *gameHandlers) placeToken(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID, playerID := vars["gameId"], vars["playerId"]
	log := that.logger.With("method", "placeToken", "game_id", gameID, "player_id", playerID)

	body, bodyErr := decodeBody(w, r)
	if bodyErr != nil {
		that.writeJSON(w, log, http.StatusBadRequest, validationResponse{Detail: []validationError{*bodyErr}})
		return
	}

	column, fieldErr := intField(body, "column")
	if fieldErr != nil {
		that.writeJSON(w, log, http.StatusBadRequest, validationResponse{Detail: []validationError{*fieldErr}})
		return
	}

	moveNumber, err := that.gameUseCase.PlaceToken(r.Context(), gameID, playerID, column)
	if err != nil {
		that.fail(w, log, err,
			errorStatus{apperror.ErrPlayerNotFound, http.StatusNotFound},
			errorStatus{apperror.ErrIllegalTurn, http.StatusConflict},
			errorStatus{apperror.ErrGameCompleted, http.StatusBadRequest},
			errorStatus{apperror.ErrColumnOutOfBounds, http.StatusBadRequest},
			errorStatus{apperror.ErrColumnFull, http.StatusBadRequest},
		)
		return
	}

	that.writeJSON(w, log, http.StatusOK, placeTokenResponse{Move: fmt.Sprintf("%s/moves/%d", gameID, moveNumber)})
}

func (that *gameHandlers) forfeit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID, playerID := vars["gameId"], vars["playerId"]
	log := that.logger.With("method", "forfeit", "game_id", gameID, "player_id", playerID)

	if err := that.gameUseCase.Forfeit(r.Context(), gameID, playerID); err != nil {
		that.fail(w, log, err,
			errorStatus{apperror.ErrPlayerNotFound, http.StatusNotFound},
			errorStatus{apperror.ErrGameCompleted, http.StatusGone},
		)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (that *gameHandlers) getMoves(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]
	log := that.logger.With("method", "getMoves", "game_id", gameID)

	var errs []validationError

	start, paramErr := optionalIntQuery(r, "start")
	if paramErr != nil {
		errs = append(errs, *paramErr)
	}

	until, paramErr := optionalIntQuery(r, "until")
	if paramErr != nil {
		errs = append(errs, *paramErr)
	}

	if len(errs) > 0 {
		that.writeJSON(w, log, http.StatusBadRequest, validationResponse{Detail: errs})
		return
	}

	moves, err := that.gameUseCase.GetMoves(r.Context(), gameID, start, until)
	if err != nil {
		that.fail(w, log, err, errorStatus{apperror.ErrInvalidRange, http.StatusNotFound})
		return
	}

	resp := movesResponse{Moves: make([]moveResponse, 0, len(moves))}
	for _, move := range moves {
		resp.Moves = append(resp.Moves, newMoveResponse(move))
	}

	that.writeJSON(w, log, http.StatusOK, resp)
}

func (that *gameHandlers) getMove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["gameId"]
	log := that.logger.With("method", "getMove", "game_id", gameID)

	moveNumber, err := strconv.Atoi(vars["moveNumber"])
	if err != nil {
		that.writeJSON(w, log, http.StatusBadRequest, validationResponse{Detail: []validationError{
			notAnInteger("path", "moveNumber"),
		}})
		return
	}

	move, err := that.gameUseCase.GetMove(r.Context(), gameID, moveNumber)
	if err != nil {
		that.fail(w, log, err, errorStatus{apperror.ErrInvalidMoveNumber, http.StatusNotFound})
		return
	}

	that.writeJSON(w, log, http.StatusOK, newMoveResponse(move))
}

// fail reports err with the first matching status. Unknown games are always 404, anything unmapped is a 500.
func (that *gameHandlers) fail(w http.ResponseWriter, log *slog.Logger, err error, statuses ...errorStatus) {
	statuses = append(statuses, errorStatus{apperror.ErrGameNotFound, http.StatusNotFound})

	for _, mapped := range statuses {
		if errors.Is(err, mapped.err) {
			log.Debug("request rejected", "error", err)
			that.writeJSON(w, log, mapped.status, errorResponse{Detail: mapped.err.Error()})
			return
		}
	}

	log.Error("request failed", "error", err)
	that.writeJSON(w, log, http.StatusInternalServerError, errorResponse{Detail: "Internal Server Error"})
}

func (that *gameHandlers) writeJSON(w http.ResponseWriter, log *slog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("failed to write response", "error", err)
	}
}

func newMoveResponse(move entity.Move) moveResponse {
	resp := moveResponse{Type: move.Type, Player: move.Player}
	if !move.IsQuit() {
		column := move.Column
		resp.Column = &column
	}

	return resp
}
