// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation, and the record store.

# Connections

Open selects a driver by database type:

  - sqlite: modernc.org/sqlite (pure Go, default)
  - postgres: github.com/lib/pq
  - pgx: github.com/jackc/pgx/v5/stdlib

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election: append-only election history, id is the history position
  - candidate: roster entries, id is the roster position
  - ballot_map: marks that an election accepts ballots
  - ballot: one row per participant per election
  - account: registered caller accounts

# Relationships

	election 1──* candidate
	election 1──1 ballot_map
	ballot_map 1──* ballot

# Record Store

Store wraps every read and write in a transaction:

	err := store.Update(ctx, func(tx *db.Tx) error {
		v, err := tx.Last(ctx)
		...
		return tx.ReplaceLast(ctx, *v)
	})

The history is only ever appended to or rewritten at its tail. ReplaceLast
refuses a record whose id is not the tail id.
*/
package db
