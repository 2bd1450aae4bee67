// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/vote-ledger/auth"
	"github.com/danielhkuo/vote-ledger/cliparse"
	"github.com/danielhkuo/vote-ledger/db"
	"github.com/danielhkuo/vote-ledger/middleware"
	"github.com/danielhkuo/vote-ledger/models"
)

type AccountHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewAccountHandler(store *db.Store, cfg cliparse.Config) *AccountHandler {
	return &AccountHandler{store: store, cfg: cfg}
}

// Register handles POST /accounts
// Each account id can be registered once; the token is returned only then
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterAccountRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Account == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "account is required")
		return
	}
	if err := auth.ValidateAccountID(req.Account); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "account must be 2-64 characters of letters, digits, '.', '-' or '_'")
		return
	}

	err := h.store.Update(r.Context(), func(tx *db.Tx) error {
		return tx.CreateAccount(r.Context(), req.Account, uint64(time.Now().UnixNano()))
	})
	if errors.Is(err, db.ErrAccountTaken) {
		middleware.ErrorResponse(w, http.StatusConflict, "Account already registered")
		return
	}
	if err != nil {
		slog.Error("failed to register account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register account")
		return
	}

	slog.Info("account registered", "account", req.Account)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterAccountResponse{
		Account:      req.Account,
		AccountToken: auth.GenerateAccountToken(req.Account, h.cfg.AccountSalt),
	})
}
