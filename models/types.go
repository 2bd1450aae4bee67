package models

// Status is the lifecycle phase of a voting.
type Status string

// Voting status constants
const (
	StatusNew     Status = "new"
	StatusRunning Status = "running"
	StatusClosed  Status = "closed"
)

// Request types

type CreateVotingRequest struct {
	Content string `json:"content"`
}

type AddCandidateRequest struct {
	Candidate string `json:"candidate"`
}

// CandidateID is a pointer so a missing field can be told apart from 0
type VoteRequest struct {
	CandidateID *int `json:"candidate_id"`
}

type RegisterAccountRequest struct {
	Account string `json:"account"`
}

// Response types

type OperationResponse struct {
	OK bool `json:"ok"`
}

type VoteResponse struct {
	OK        bool   `json:"ok"`
	ReceiptID string `json:"receipt_id"`
}

type RegisterAccountResponse struct {
	Account      string `json:"account"`
	AccountToken string `json:"account_token"`
}

type VotingUsersResponse struct {
	VotingID int            `json:"voting_id"`
	Users    map[string]int `json:"users"`
}

type HistoryResponse struct {
	Votings []Voting `json:"votings"`
}

// Domain types

type Candidate struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	VoteCount uint32 `json:"vote_count"`
}

type Voting struct {
	ID         int         `json:"id"`
	Owner      string      `json:"owner"`
	Content    string      `json:"content"`
	Status     Status      `json:"status"`
	StartTime  uint64      `json:"start_time"`
	StartBlock uint64      `json:"start_block"`
	EndTime    uint64      `json:"end_time"`
	EndBlock   uint64      `json:"end_block"`
	Candidates []Candidate `json:"candidates"`
}

type Ballot struct {
	VotingID    int    `json:"voting_id"`
	Participant string `json:"participant"`
	CandidateID int    `json:"candidate_id"`
	Stake       string `json:"stake"` // decimal base units
	ReceiptID   string `json:"receipt_id"`
	CastAt      uint64 `json:"cast_at"`
	CastBlock   uint64 `json:"cast_block"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
