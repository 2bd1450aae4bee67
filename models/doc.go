// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateVotingRequest: content
  - AddCandidateRequest: candidate
  - VoteRequest: candidate_id
  - RegisterAccountRequest: account

# Response Types

Types for JSON responses:

  - OperationResponse: ok
  - VoteResponse: ok, receipt_id
  - RegisterAccountResponse: account, account_token
  - VotingUsersResponse: voting_id, users
  - HistoryResponse: votings
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Voting: one election with its lifecycle stamps and roster
  - Candidate: roster entry, id is its position in the roster
  - Ballot: one participant's choice in one voting

# Constants

Status values:

	StatusNew     = "new"
	StatusRunning = "running"
	StatusClosed  = "closed"

A voting only ever moves forward through new → running → closed.
*/
package models
