// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/vote-ledger/auth"
	"github.com/danielhkuo/vote-ledger/cliparse"
	"github.com/danielhkuo/vote-ledger/ledger"
	"github.com/danielhkuo/vote-ledger/middleware"
	"github.com/danielhkuo/vote-ledger/models"
)

// HeaderAttachedDeposit carries the stake attached to a call, in base units
const HeaderAttachedDeposit = "X-Attached-Deposit"

type VotingHandler struct {
	ledger *ledger.Ledger
	clock  ledger.Clock
	cfg    cliparse.Config
}

func NewVotingHandler(l *ledger.Ledger, clock ledger.Clock, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{ledger: l, clock: clock, cfg: cfg}
}

// CreateVoting handles POST /votings
func (h *VotingHandler) CreateVoting(w http.ResponseWriter, r *http.Request) {
	call, ok := h.callContext(w, r)
	if !ok {
		return
	}

	var req models.CreateVotingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := h.ledger.CreateVoting(r.Context(), call, req.Content); err != nil {
		writeLedgerError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.OperationResponse{OK: true})
}

// AddCandidate handles POST /votings/current/candidates
func (h *VotingHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	call, ok := h.callContext(w, r)
	if !ok {
		return
	}

	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := h.ledger.AddCandidate(r.Context(), call, req.Candidate); err != nil {
		writeLedgerError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.OperationResponse{OK: true})
}

// StartVote handles POST /votings/current/start
func (h *VotingHandler) StartVote(w http.ResponseWriter, r *http.Request) {
	call, ok := h.callContext(w, r)
	if !ok {
		return
	}

	if err := h.ledger.StartVote(r.Context(), call); err != nil {
		writeLedgerError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.OperationResponse{OK: true})
}

// EndVote handles POST /votings/current/end
func (h *VotingHandler) EndVote(w http.ResponseWriter, r *http.Request) {
	call, ok := h.callContext(w, r)
	if !ok {
		return
	}

	if err := h.ledger.EndVote(r.Context(), call); err != nil {
		writeLedgerError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.OperationResponse{OK: true})
}

// Vote handles POST /votings/current/votes
// The stake is read from the X-Attached-Deposit header
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	call, ok := h.callContext(w, r)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.CandidateID == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}

	ballot, err := h.ledger.Vote(r.Context(), call, *req.CandidateID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.VoteResponse{
		OK:        true,
		ReceiptID: ballot.ReceiptID,
	})
}

// GetCurrent handles GET /votings/current
func (h *VotingHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	v, err := h.ledger.VotingInfo(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if v == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "There is no voting")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, v)
}

// GetByID handles GET /votings/{id}
func (h *VotingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := votingID(w, r)
	if !ok {
		return
	}

	v, err := h.ledger.VotingInfoByID(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if v == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, v)
}

// GetUsers handles GET /votings/{id}/users
func (h *VotingHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := votingID(w, r)
	if !ok {
		return
	}

	users, err := h.ledger.VotingUsers(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if users == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VotingUsersResponse{
		VotingID: id,
		Users:    users,
	})
}

// History handles GET /votings
func (h *VotingHandler) History(w http.ResponseWriter, r *http.Request) {
	votings, err := h.ledger.History(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HistoryResponse{Votings: votings})
}

// callContext authenticates the caller and reads the attached stake
func (h *VotingHandler) callContext(w http.ResponseWriter, r *http.Request) (ledger.Call, bool) {
	account, err := auth.Caller(r, h.cfg.AccountSalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return ledger.Call{}, false
	}

	stake, err := ledger.ParseStake(r.Header.Get(HeaderAttachedDeposit))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return ledger.Call{}, false
	}

	return ledger.Call{Account: account, Deposit: stake, Clock: h.clock}, true
}

func votingID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voting id must be an integer")
		return 0, false
	}
	return id, true
}

// writeLedgerError maps ledger rejections to HTTP statuses
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrState), errors.Is(err, ledger.ErrDuplicate):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrInsufficientStake):
		middleware.ErrorResponse(w, http.StatusPaymentRequired, err.Error())
	default:
		slog.Error("ledger operation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}
