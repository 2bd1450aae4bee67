// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the vote-ledger API.

# Handler Types

Each handler is a struct with its dependencies and the config:

  - AccountHandler: Account registration
  - VotingHandler: Voting lifecycle, votes and reads

Handlers are created via constructor functions:

	accountHandler := handlers.NewAccountHandler(store, cfg)
	votingHandler := handlers.NewVotingHandler(l, clock, cfg)

# Accounts

	POST /accounts → Register (returns account_token)

The token is an HMAC of the account id and is shown only once.

# Voting Lifecycle

Votings progress through three states: new → running → closed. By default a
voting is running as soon as it is created; with draft elections enabled it
stays new until started.

	POST /votings                    → CreateVoting
	POST /votings/current/candidates → AddCandidate (new or running)
	POST /votings/current/start      → StartVote (new only)
	POST /votings/current/end        → EndVote (running only)
	POST /votings/current/votes      → Vote (running only)

These require the X-Account-ID and X-Account-Token headers. Vote also reads
the stake from X-Attached-Deposit, a decimal amount in base units.

# Errors

Ledger rejections map to statuses:

	invalid input        → 400
	no voting            → 404
	wrong state, repeat  → 409
	stake below minimum  → 402
*/
package handlers
