// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides caller identity for the API.

# Account Tokens

Account tokens use HMAC-SHA256 to create deterministic, verifiable keys:

	token := auth.GenerateAccountToken(account, salt)
	err := auth.ValidateAccountToken(account, token, salt)

The token is URL-safe base64 encoded without padding. Since it's
deterministic, the same account and salt always produce the same token. This
allows validation without storing the token in the database.

# Authenticating Requests

Mutating requests carry two headers:

	X-Account-ID:    alice.test
	X-Account-Token: <token>

Caller checks both and returns the account id, which becomes the voter
identity in the ledger:

	account, err := auth.Caller(r, cfg.AccountSalt)

Account ids are 2-64 characters of letters, digits, '.', '-' and '_'.
*/
package auth
