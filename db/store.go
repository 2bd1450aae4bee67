// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/vote-ledger/models"
)

var (
	ErrEmptyHistory = errors.New("election history is empty")
	ErrNotTail      = errors.New("record is not the tail of the election history")
	ErrBallotExists = errors.New("ballot already recorded")
	ErrAccountTaken = errors.New("account already registered")
)

// Store is the append-only election history plus the per-election ballot maps.
type Store struct {
	conn   *sql.DB
	dbType string
}

func NewStore(conn *sql.DB, dbType string) *Store {
	return &Store{conn: conn, dbType: dbType}
}

// Update runs fn in a read-write transaction and commits if fn returns nil.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	return s.run(ctx, false, fn)
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	return s.run(ctx, true, fn)
}

func (s *Store) run(ctx context.Context, readOnly bool, fn func(tx *Tx) error) error {
	// SQLite transactions are already serializable and reject isolation options
	var opts *sql.TxOptions
	if s.dbType != TypeSQLite {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable, ReadOnly: readOnly}
	}

	tx, err := s.conn.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Tx exposes the record store operations inside one transaction.
type Tx struct {
	tx *sql.Tx
}

const votingColumns = `id, owner, content, status, start_time, start_block, end_time, end_block`

// Append stores v at the end of the history and returns its id,
// which is the length of the history before the append.
func (t *Tx) Append(ctx context.Context, v models.Voting) (int, error) {
	var id int
	if err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM election`).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to count elections: %w", err)
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO election (`+votingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id, v.Owner, v.Content, string(v.Status),
		int64(v.StartTime), int64(v.StartBlock), int64(v.EndTime), int64(v.EndBlock))
	if err != nil {
		return 0, fmt.Errorf("failed to insert election: %w", err)
	}

	for _, c := range v.Candidates {
		if err := t.putCandidate(ctx, id, c); err != nil {
			return 0, err
		}
	}

	return id, nil
}

// Last returns the record at the highest index, or nil if the history is empty.
func (t *Tx) Last(ctx context.Context) (*models.Voting, error) {
	return t.queryVoting(ctx, `SELECT `+votingColumns+` FROM election ORDER BY id DESC LIMIT 1`)
}

// ByID returns the record with the given id, or nil if id is out of range.
func (t *Tx) ByID(ctx context.Context, id int) (*models.Voting, error) {
	if id < 0 {
		return nil, nil
	}
	return t.queryVoting(ctx, `SELECT `+votingColumns+` FROM election WHERE id = $1`, id)
}

// ReplaceLast overwrites the tail record. v.ID must equal the tail id.
func (t *Tx) ReplaceLast(ctx context.Context, v models.Voting) error {
	var tail sql.NullInt64
	if err := t.tx.QueryRowContext(ctx, `SELECT MAX(id) FROM election`).Scan(&tail); err != nil {
		return fmt.Errorf("failed to query tail: %w", err)
	}
	if !tail.Valid {
		return ErrEmptyHistory
	}
	if int64(v.ID) != tail.Int64 {
		return fmt.Errorf("%w: got id %d, tail is %d", ErrNotTail, v.ID, tail.Int64)
	}

	_, err := t.tx.ExecContext(ctx, `
		UPDATE election
		SET owner = $1, content = $2, status = $3,
		    start_time = $4, start_block = $5, end_time = $6, end_block = $7
		WHERE id = $8
	`, v.Owner, v.Content, string(v.Status),
		int64(v.StartTime), int64(v.StartBlock), int64(v.EndTime), int64(v.EndBlock), v.ID)
	if err != nil {
		return fmt.Errorf("failed to update election: %w", err)
	}

	for _, c := range v.Candidates {
		if err := t.putCandidate(ctx, v.ID, c); err != nil {
			return err
		}
	}

	return nil
}

// List returns the whole history in creation order.
func (t *Tx) List(ctx context.Context) ([]models.Voting, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+votingColumns+` FROM election ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	votings := []models.Voting{}
	for rows.Next() {
		v, err := scanVoting(rows)
		if err != nil {
			return nil, err
		}
		votings = append(votings, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read elections: %w", err)
	}
	rows.Close()

	// Load all rosters in one pass; ids are positions so they index the slice
	crows, err := t.tx.QueryContext(ctx, `
		SELECT election_id, id, name, vote_count
		FROM candidate
		ORDER BY election_id, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer crows.Close()

	for crows.Next() {
		var electionID int
		var c models.Candidate
		if err := crows.Scan(&electionID, &c.ID, &c.Name, &c.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		if electionID >= 0 && electionID < len(votings) {
			votings[electionID].Candidates = append(votings[electionID].Candidates, c)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}

	return votings, nil
}

// Height returns the largest block index stamped on any election or ballot.
func (t *Tx) Height(ctx context.Context) (uint64, error) {
	var start, end, cast int64
	err := t.tx.QueryRowContext(ctx, `
		SELECT
			(SELECT COALESCE(MAX(start_block), 0) FROM election),
			(SELECT COALESCE(MAX(end_block), 0) FROM election),
			(SELECT COALESCE(MAX(cast_block), 0) FROM ballot)
	`).Scan(&start, &end, &cast)
	if err != nil {
		return 0, fmt.Errorf("failed to query height: %w", err)
	}
	return uint64(max(start, end, cast)), nil
}

// CreateBallotMap creates the empty ballot map for an election.
func (t *Tx) CreateBallotMap(ctx context.Context, id int) error {
	_, err := t.tx.ExecContext(ctx, `INSERT INTO ballot_map (election_id) VALUES ($1)`, id)
	if err != nil {
		return fmt.Errorf("failed to create ballot map: %w", err)
	}
	return nil
}

// BallotMap returns participant -> candidate id for an election,
// or nil if the election has no ballot map.
func (t *Tx) BallotMap(ctx context.Context, id int) (map[string]int, error) {
	exists, err := t.HasBallotMap(ctx, id)
	if err != nil || !exists {
		return nil, err
	}

	rows, err := t.tx.QueryContext(ctx, `
		SELECT participant, candidate_id FROM ballot WHERE election_id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query ballots: %w", err)
	}
	defer rows.Close()

	ballots := make(map[string]int)
	for rows.Next() {
		var participant string
		var candidateID int
		if err := rows.Scan(&participant, &candidateID); err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}
		ballots[participant] = candidateID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ballots: %w", err)
	}

	return ballots, nil
}

// HasBallotMap reports whether the ballot map for an election exists.
func (t *Tx) HasBallotMap(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM ballot_map WHERE election_id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query ballot map: %w", err)
	}
	return exists, nil
}

// Ballot returns one participant's ballot, or nil if they have not voted.
func (t *Tx) Ballot(ctx context.Context, id int, participant string) (*models.Ballot, error) {
	var b models.Ballot
	var castAt, castBlock int64
	err := t.tx.QueryRowContext(ctx, `
		SELECT election_id, participant, candidate_id, stake, receipt_id, cast_at, cast_block
		FROM ballot
		WHERE election_id = $1 AND participant = $2
	`, id, participant).Scan(&b.VotingID, &b.Participant, &b.CandidateID, &b.Stake, &b.ReceiptID, &castAt, &castBlock)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ballot: %w", err)
	}
	b.CastAt = uint64(castAt)
	b.CastBlock = uint64(castBlock)
	return &b, nil
}

// PutBallot writes a ballot map entry. Entries are write-once.
func (t *Tx) PutBallot(ctx context.Context, b models.Ballot) error {
	existing, err := t.Ballot(ctx, b.VotingID, b.Participant)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrBallotExists
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO ballot (election_id, participant, candidate_id, stake, receipt_id, cast_at, cast_block)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, b.VotingID, b.Participant, b.CandidateID, b.Stake, b.ReceiptID, int64(b.CastAt), int64(b.CastBlock))
	if err != nil {
		return fmt.Errorf("failed to insert ballot: %w", err)
	}
	return nil
}

// CreateAccount registers a caller account id. Ids are first come, first served.
func (t *Tx) CreateAccount(ctx context.Context, id string, createdAt uint64) error {
	var exists bool
	err := t.tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM account WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to query account: %w", err)
	}
	if exists {
		return ErrAccountTaken
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO account (id, created_at) VALUES ($1, $2)
	`, id, int64(createdAt))
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (t *Tx) putCandidate(ctx context.Context, electionID int, c models.Candidate) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO candidate (election_id, id, name, vote_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (election_id, id) DO UPDATE SET vote_count = excluded.vote_count
	`, electionID, c.ID, c.Name, int64(c.VoteCount))
	if err != nil {
		return fmt.Errorf("failed to write candidate: %w", err)
	}
	return nil
}

func (t *Tx) queryVoting(ctx context.Context, query string, args ...any) (*models.Voting, error) {
	v, err := scanVoting(t.tx.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	v.Candidates, err = t.candidates(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (t *Tx) candidates(ctx context.Context, electionID int) ([]models.Candidate, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, vote_count
		FROM candidate
		WHERE election_id = $1
		ORDER BY id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}
	return candidates, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVoting(row scanner) (models.Voting, error) {
	var v models.Voting
	var status string
	var startTime, startBlock, endTime, endBlock int64
	err := row.Scan(&v.ID, &v.Owner, &v.Content, &status, &startTime, &startBlock, &endTime, &endBlock)
	if err == sql.ErrNoRows {
		return v, err
	}
	if err != nil {
		return v, fmt.Errorf("failed to scan election: %w", err)
	}
	v.Status = models.Status(status)
	v.StartTime = uint64(startTime)
	v.StartBlock = uint64(startBlock)
	v.EndTime = uint64(endTime)
	v.EndBlock = uint64(endBlock)
	v.Candidates = []models.Candidate{}
	return v, nil
}
