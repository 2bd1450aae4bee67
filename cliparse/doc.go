// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string or SQLite file (required)
  - DatabaseType: sqlite, postgres or pgx (default: sqlite)
  - AccountSalt: Secret for account token HMAC (required)
  - MinVoteStake: Minimum stake attached to a vote, decimal base units
    (default: 100000000000000000000000)
  - Draft: New votings stay new until started (default: false)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-account-salt Account token salt
	-min-stake    Minimum vote stake
	-draft        Keep new votings in the new state until started

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	ACCOUNT_SALT    → -account-salt
	MIN_VOTE_STAKE  → -min-stake
	DRAFT_ELECTIONS → -draft

CLI flags take precedence over environment variables. main loads a .env file
into the environment before parsing, if one exists.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - ACCOUNT_SALT is missing
  - the database type is unknown
  - the minimum stake is not a non-negative integer
*/
package cliparse
