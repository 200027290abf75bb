package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
)

// stateBytes is the number of random bytes for the OAuth state parameter.
// 32 bytes encodes to 43 base64url characters.
const stateBytes = 32

// PKCEChallenge represents a PKCE (Proof Key for Code Exchange) challenge.
type PKCEChallenge struct {
	// CodeVerifier is kept secret and only sent with the token request.
	CodeVerifier string

	// CodeChallenge is the S256 hash of the verifier, sent in the authorization request.
	CodeChallenge string

	// CodeChallengeMethod is always "S256".
	CodeChallengeMethod string
}

// GeneratePKCE generates a new PKCE code verifier and its S256 challenge.
func GeneratePKCE() *PKCEChallenge {
	verifier := oauth2.GenerateVerifier()
	return &PKCEChallenge{
		CodeVerifier:        verifier,
		CodeChallenge:       oauth2.S256ChallengeFromVerifier(verifier),
		CodeChallengeMethod: "S256",
	}
}

// GenerateState generates a random state parameter for OAuth.
// The state is echoed back by the provider and checked on callback to
// prevent cross-site request forgery against the redirect endpoint.
func GenerateState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
