// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger implements the voting state machine.

# Lifecycle

Only the most recent voting in the history is mutable:

	new --StartVote--> running --EndVote--> closed

CreateVoting is refused until the current voting is closed, so at most one
voting is ever open. By default a new voting enters running immediately and
StartVote is never needed; with Config.Draft it stays new until started.

# Operations

	v, err := l.CreateVoting(ctx, call, "Pick a lunch spot")
	c, err := l.AddCandidate(ctx, call, "Pizza")
	b, err := l.Vote(ctx, call, c.ID)
	err = l.EndVote(ctx, call)

Each mutating operation reads the true tail of the history, checks all of its
preconditions, and only then writes, inside one transaction. A rejected
operation leaves no trace.

# Errors

Rejections wrap one of ErrValidation, ErrState, ErrDuplicate,
ErrInsufficientStake or ErrNotFound. Any other error comes from storage.

Read operations (VotingInfo, VotingInfoByID, VotingUsers, History) return nil
for missing records instead of an error.

# Call Context

Caller identity, timestamps and the attached stake come from a CallContext.
The ledger only compares the stake against Config.MinVoteStake and records it
on the ballot; it never holds funds.
*/
package ledger
