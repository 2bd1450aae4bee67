// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the vote-ledger API server.

vote-ledger runs one election at a time: a voting is created, given
candidates, voted on by accounts that attach a minimum stake, and closed.
Each account votes at most once per voting. Closed votings stay in an
append-only history.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:ledger.db ACCOUNT_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -account-salt ...

Variables in a .env file in the working directory are loaded first.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - ACCOUNT_SALT (-account-salt): Secret for account token HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or pgx (default: sqlite)
  - MIN_VOTE_STAKE (-min-stake): Minimum vote stake in base units
  - DRAFT_ELECTIONS (-draft): Keep new votings in the new state until started

# Architecture

  - ledger: Voting state machine
  - db: Schema, drivers and the record store
  - handlers: HTTP request handlers (accounts, votings)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Domain and request/response types
  - auth: Account tokens
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
