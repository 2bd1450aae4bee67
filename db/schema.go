// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are valid for both PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Election history, id is the position in the history.
-- Election ids are BIGINT so any Go int can be looked up on PostgreSQL
CREATE TABLE IF NOT EXISTS election (
    id BIGINT PRIMARY KEY,
    owner TEXT NOT NULL,
    content TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new', 'running', 'closed')),
    start_time BIGINT NOT NULL DEFAULT 0,
    start_block BIGINT NOT NULL DEFAULT 0,
    end_time BIGINT NOT NULL DEFAULT 0,
    end_block BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_election_status ON election(status);

-- Candidates, id is the position in the roster
CREATE TABLE IF NOT EXISTS candidate (
    election_id BIGINT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    id INTEGER NOT NULL,
    name TEXT NOT NULL,
    vote_count INTEGER NOT NULL DEFAULT 0 CHECK (vote_count >= 0),
    PRIMARY KEY (election_id, id),
    UNIQUE (election_id, name)
);

-- One ballot map per election
CREATE TABLE IF NOT EXISTS ballot_map (
    election_id BIGINT PRIMARY KEY REFERENCES election(id) ON DELETE CASCADE
);

-- Ballots, one per participant per election
CREATE TABLE IF NOT EXISTS ballot (
    election_id BIGINT NOT NULL REFERENCES ballot_map(election_id) ON DELETE CASCADE,
    participant TEXT NOT NULL,
    candidate_id INTEGER NOT NULL,
    stake TEXT NOT NULL,
    receipt_id TEXT NOT NULL UNIQUE,
    cast_at BIGINT NOT NULL,
    cast_block BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (election_id, participant)
);

CREATE INDEX IF NOT EXISTS idx_ballot_candidate ON ballot(election_id, candidate_id);

-- Registered caller accounts
CREATE TABLE IF NOT EXISTS account (
    id TEXT PRIMARY KEY,
    created_at BIGINT NOT NULL
);
`
