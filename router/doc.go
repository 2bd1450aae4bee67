// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the vote-ledger API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, l, clock, cfg)

# Endpoints

Health:

	GET /health

Accounts:

	POST /accounts - Register an account id, returns its token

Current voting (requires X-Account-ID and X-Account-Token):

	POST /votings                    - Create voting
	POST /votings/current/candidates - Add candidate
	POST /votings/current/start      - Start (new votings only)
	POST /votings/current/end        - Close
	POST /votings/current/votes      - Vote, stake in X-Attached-Deposit

Reads (public):

	GET /votings            - Whole history
	GET /votings/current    - Current voting
	GET /votings/{id}       - Voting by id
	GET /votings/{id}/users - Who voted for which candidate

# Handler Initialization

The router creates handler instances with dependency injection:

	accountHandler := handlers.NewAccountHandler(store, cfg)
	votingHandler := handlers.NewVotingHandler(l, clock, cfg)
*/
package router
