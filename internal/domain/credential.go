package domain

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Credential is a stored password verifier. Two schemes coexist: current
// records hold a bcrypt hash (fresh salt embedded per account); legacy
// records imported from the old site hold hex sha256(password||salt),
// where salt may be empty. The scheme is resolved at verification time
// from the hash itself rather than by probing a nullable column.
type Credential struct {
	Hash string
	Salt string
}

type CredentialScheme int

const (
	SchemeBcrypt CredentialScheme = iota
	SchemeLegacySHA256
)

func (c Credential) Scheme() CredentialScheme {
	if strings.HasPrefix(c.Hash, "$2") {
		return SchemeBcrypt
	}
	return SchemeLegacySHA256
}

// NeedsUpgrade reports whether a successful verification should trigger a
// rewrite to the current scheme.
func (c Credential) NeedsUpgrade() bool { return c.Scheme() != SchemeBcrypt }

func (c Credential) Verify(password string) bool {
	switch c.Scheme() {
	case SchemeBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(c.Hash), []byte(password)) == nil
	default:
		sum := sha256.Sum256([]byte(password + c.Salt))
		want := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(c.Hash))) == 1
	}
}

// NewCredential hashes a password under the current scheme.
func NewCredential(password string) (Credential, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return Credential{}, err
	}
	return Credential{Hash: string(h)}, nil
}
