package services

import (
	"strings"

	"github.com/google/uuid"
)

type CredentialState int

const (
	CredentialAbsent CredentialState = iota
	CredentialInvalid
	CredentialValid
)

func (s CredentialState) String() string {
	switch s {
	case CredentialAbsent:
		return "absent"
	case CredentialInvalid:
		return "invalid"
	case CredentialValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Credential is the outcome of reading an optional bearer token. UserID is
// set only when State is CredentialValid; Err only when CredentialInvalid.
type Credential struct {
	State  CredentialState
	UserID uuid.UUID
	Err    error
}

func AnonymousCredential() Credential {
	return Credential{State: CredentialAbsent}
}

func (c Credential) Valid() bool {
	return c.State == CredentialValid
}

// BearerToken extracts the token from an Authorization header value. It
// returns "" when the header is empty or not a bearer credential.
func BearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
