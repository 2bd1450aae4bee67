// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/vote-ledger/cliparse"
	"github.com/danielhkuo/vote-ledger/db"
	"github.com/danielhkuo/vote-ledger/handlers"
	"github.com/danielhkuo/vote-ledger/ledger"
	"github.com/danielhkuo/vote-ledger/middleware"
)

func NewRouter(store *db.Store, l *ledger.Ledger, clock ledger.Clock, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(store, cfg)
	votingHandler := handlers.NewVotingHandler(l, clock, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Caller identity
	mux.HandleFunc("POST /accounts", middleware.WithLogging(accountHandler.Register))

	// Current voting (authenticated)
	mux.HandleFunc("POST /votings", middleware.WithLogging(votingHandler.CreateVoting))
	mux.HandleFunc("POST /votings/current/candidates", middleware.WithLogging(votingHandler.AddCandidate))
	mux.HandleFunc("POST /votings/current/start", middleware.WithLogging(votingHandler.StartVote))
	mux.HandleFunc("POST /votings/current/end", middleware.WithLogging(votingHandler.EndVote))
	mux.HandleFunc("POST /votings/current/votes", middleware.WithLogging(votingHandler.Vote))

	// Reads (public)
	mux.HandleFunc("GET /votings", middleware.WithLogging(votingHandler.History))
	mux.HandleFunc("GET /votings/current", middleware.WithLogging(votingHandler.GetCurrent))
	mux.HandleFunc("GET /votings/{id}", middleware.WithLogging(votingHandler.GetByID))
	mux.HandleFunc("GET /votings/{id}/users", middleware.WithLogging(votingHandler.GetUsers))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("vote-ledger API v1"))
	})

	return mux
}
