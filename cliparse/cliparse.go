package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/danielhkuo/vote-ledger/ledger"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AccountSalt  string
	MinVoteStake string
	Draft        bool
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var draft bool

	fs := flag.NewFlagSet("vote-ledger", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or pgx)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AccountSalt, "account-salt", "", "Account token salt (prefer env)")

	// Ledger rules
	fs.StringVar(&cfg.MinVoteStake, "min-stake", "", "Minimum stake attached to a vote, in base units")
	fs.BoolVar(&draft, "draft", false, "Keep new votings in the new state until started")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	switch cfg.DatabaseType {
	case "sqlite", "postgres", "pgx":
	default:
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.AccountSalt == "" {
		cfg.AccountSalt = os.Getenv("ACCOUNT_SALT")
	}
	if cfg.AccountSalt == "" {
		return Config{}, errors.New("ACCOUNT_SALT required")
	}

	if cfg.MinVoteStake == "" {
		cfg.MinVoteStake = os.Getenv("MIN_VOTE_STAKE")
		if cfg.MinVoteStake == "" {
			cfg.MinVoteStake = ledger.DefaultMinVoteStake
		}
	}
	if _, err := ledger.ParseStake(cfg.MinVoteStake); err != nil {
		return Config{}, fmt.Errorf("invalid minimum stake: %w", err)
	}

	if !draft {
		if v := os.Getenv("DRAFT_ELECTIONS"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid DRAFT_ELECTIONS env variable")
			}
			draft = b
		}
	}
	cfg.Draft = draft

	return cfg, nil
}
