// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/danielhkuo/vote-ledger/db"
	"github.com/danielhkuo/vote-ledger/models"
)

// Config holds the ledger rules. The zero value opens votings on creation and
// uses DefaultMinVoteStake.
type Config struct {
	// MinVoteStake is the smallest attached stake accepted with a vote.
	// Nil means DefaultMinVoteStake.
	MinVoteStake *big.Int
	// Draft keeps a created voting in new until StartVote. Otherwise
	// CreateVoting enters running directly.
	Draft bool
}

// Ledger is the voting state machine. Mutating operations are serialized by
// mu and each runs in a single store transaction.
type Ledger struct {
	mu    sync.Mutex
	store *db.Store
	cfg   Config
}

// New returns a ledger over store. A nil cfg.MinVoteStake is replaced by
// DefaultMinVoteStake.
func New(store *db.Store, cfg Config) *Ledger {
	if cfg.MinVoteStake == nil {
		cfg.MinVoteStake, _ = ParseStake(DefaultMinVoteStake)
	}
	return &Ledger{store: store, cfg: cfg}
}

// CreateVoting appends a new voting owned by the caller. The current voting,
// if any, must be closed.
func (l *Ledger) CreateVoting(ctx context.Context, call CallContext, content string) (*models.Voting, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	var created models.Voting
	err := l.update(ctx, func(tx *db.Tx) error {
		last, err := tx.Last(ctx)
		if err != nil {
			return err
		}
		if last != nil && last.Status != models.StatusClosed {
			return fmt.Errorf("%w: voting %d is not closed", ErrState, last.ID)
		}

		v := models.Voting{
			Owner:      call.Caller(),
			Content:    content,
			Status:     models.StatusNew,
			Candidates: []models.Candidate{},
		}
		if !l.cfg.Draft {
			start(&v, call)
		}

		id, err := tx.Append(ctx, v)
		if err != nil {
			return err
		}
		v.ID = id

		if err := tx.CreateBallotMap(ctx, id); err != nil {
			return err
		}

		created = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("voting created", "voting_id", created.ID, "owner", created.Owner, "status", created.Status)
	return &created, nil
}

// AddCandidate appends a candidate to the current voting's roster.
func (l *Ledger) AddCandidate(ctx context.Context, call CallContext, name string) (*models.Candidate, error) {
	var added models.Candidate
	var votingID int
	err := l.update(ctx, func(tx *db.Tx) error {
		v, err := current(ctx, tx)
		if err != nil {
			return err
		}
		if name == "" {
			return fmt.Errorf("%w: candidate name is required", ErrValidation)
		}
		if v.Status != models.StatusNew && v.Status != models.StatusRunning {
			return fmt.Errorf("%w: voting %d is %s, candidates can no longer be added", ErrState, v.ID, v.Status)
		}
		for _, c := range v.Candidates {
			if c.Name == name {
				return fmt.Errorf("%w: candidate %q already exists", ErrDuplicate, name)
			}
		}

		added = models.Candidate{ID: len(v.Candidates), Name: name}
		v.Candidates = append(v.Candidates, added)
		votingID = v.ID

		return tx.ReplaceLast(ctx, *v)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("candidate added", "voting_id", votingID, "candidate_id", added.ID, "caller", call.Caller())
	return &added, nil
}

// StartVote moves the current voting from new to running.
func (l *Ledger) StartVote(ctx context.Context, call CallContext) error {
	var votingID int
	err := l.update(ctx, func(tx *db.Tx) error {
		v, err := current(ctx, tx)
		if err != nil {
			return err
		}
		if v.Status != models.StatusNew {
			return fmt.Errorf("%w: voting %d is %s, it cannot be started", ErrState, v.ID, v.Status)
		}

		start(v, call)
		votingID = v.ID
		return tx.ReplaceLast(ctx, *v)
	})
	if err != nil {
		return err
	}

	slog.Info("voting started", "voting_id", votingID, "caller", call.Caller())
	return nil
}

// EndVote moves the current voting from running to closed.
func (l *Ledger) EndVote(ctx context.Context, call CallContext) error {
	var votingID int
	err := l.update(ctx, func(tx *db.Tx) error {
		v, err := current(ctx, tx)
		if err != nil {
			return err
		}
		if v.Status != models.StatusRunning {
			return fmt.Errorf("%w: voting %d is not running, it cannot be ended", ErrState, v.ID)
		}

		v.Status = models.StatusClosed
		v.EndTime, v.EndBlock = call.Now()
		votingID = v.ID
		return tx.ReplaceLast(ctx, *v)
	})
	if err != nil {
		return err
	}

	slog.Info("voting ended", "voting_id", votingID, "caller", call.Caller())
	return nil
}

// Vote records the caller's choice in the current voting and counts it.
// The ballot and the updated roster are committed together.
func (l *Ledger) Vote(ctx context.Context, call CallContext, candidateID int) (*models.Ballot, error) {
	caller := call.Caller()
	stake := call.AttachedStake()
	if stake == nil {
		stake = new(big.Int)
	}

	var ballot models.Ballot
	err := l.update(ctx, func(tx *db.Tx) error {
		v, err := current(ctx, tx)
		if err != nil {
			return err
		}
		if v.Status != models.StatusRunning {
			return fmt.Errorf("%w: voting %d is not running", ErrState, v.ID)
		}
		if candidateID < 0 || candidateID >= len(v.Candidates) {
			return fmt.Errorf("%w: candidate id %d is out of range", ErrValidation, candidateID)
		}
		if stake.Cmp(l.cfg.MinVoteStake) < 0 {
			return fmt.Errorf("%w: attached %s, at least %s is required",
				ErrInsufficientStake, stake.String(), l.cfg.MinVoteStake.String())
		}

		ok, err := tx.HasBallotMap(ctx, v.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: ballot map for voting %d", ErrNotFound, v.ID)
		}

		existing, err := tx.Ballot(ctx, v.ID, caller)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s has already voted in voting %d", ErrDuplicate, caller, v.ID)
		}

		castAt, castBlock := call.Now()
		ballot = models.Ballot{
			VotingID:    v.ID,
			Participant: caller,
			CandidateID: candidateID,
			Stake:       stake.String(),
			ReceiptID:   uuid.NewString(),
			CastAt:      castAt,
			CastBlock:   castBlock,
		}
		if err := tx.PutBallot(ctx, ballot); err != nil {
			if errors.Is(err, db.ErrBallotExists) {
				return fmt.Errorf("%w: %s has already voted in voting %d", ErrDuplicate, caller, v.ID)
			}
			return err
		}

		v.Candidates[candidateID].VoteCount++
		return tx.ReplaceLast(ctx, *v)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("vote cast",
		"voting_id", ballot.VotingID,
		"candidate_id", ballot.CandidateID,
		"caller", caller,
		"stake", humanize.BigComma(stake),
		"receipt_id", ballot.ReceiptID,
	)
	return &ballot, nil
}

// VotingInfo returns the current voting, or nil if none was ever created.
func (l *Ledger) VotingInfo(ctx context.Context) (*models.Voting, error) {
	var v *models.Voting
	err := l.store.View(ctx, func(tx *db.Tx) error {
		var err error
		v, err = tx.Last(ctx)
		return err
	})
	return v, err
}

// VotingInfoByID returns the voting with the given id, or nil if there is none.
func (l *Ledger) VotingInfoByID(ctx context.Context, id int) (*models.Voting, error) {
	var v *models.Voting
	err := l.store.View(ctx, func(tx *db.Tx) error {
		var err error
		v, err = tx.ByID(ctx, id)
		return err
	})
	return v, err
}

// VotingUsers returns a snapshot of who voted for what in a voting,
// or nil if the voting does not exist.
func (l *Ledger) VotingUsers(ctx context.Context, id int) (map[string]int, error) {
	var users map[string]int
	err := l.store.View(ctx, func(tx *db.Tx) error {
		var err error
		users, err = tx.BallotMap(ctx, id)
		return err
	})
	return users, err
}

// History returns every voting in creation order.
func (l *Ledger) History(ctx context.Context) ([]models.Voting, error) {
	var votings []models.Voting
	err := l.store.View(ctx, func(tx *db.Tx) error {
		var err error
		votings, err = tx.List(ctx)
		return err
	})
	return votings, err
}

// Height returns the largest block index stamped so far.
func (l *Ledger) Height(ctx context.Context) (uint64, error) {
	var height uint64
	err := l.store.View(ctx, func(tx *db.Tx) error {
		var err error
		height, err = tx.Height(ctx)
		return err
	})
	return height, err
}

func (l *Ledger) update(ctx context.Context, fn func(tx *db.Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Update(ctx, fn)
}

// current loads the tail of the history.
func current(ctx context.Context, tx *db.Tx) (*models.Voting, error) {
	v, err := tx.Last(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: there is no voting", ErrNotFound)
	}
	return v, nil
}

func start(v *models.Voting, call CallContext) {
	v.Status = models.StatusRunning
	v.StartTime, v.StartBlock = call.Now()
}
