package principal

import (
	"context"
	"errors"
	"strings"
)

// Principal is a resolved remote caller: an identity plus the
// capabilities it may exercise.
type Principal struct {
	ID           string
	Super        bool
	Capabilities []string
}

// Can reports whether the principal holds the capability. Super
// principals hold everything.
func (p *Principal) Can(capability string) bool {
	if p == nil {
		return false
	}
	if p.Super {
		return true
	}
	for _, c := range p.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Resolver turns an API key into a Principal.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*Principal, error)
}

// ErrUnauthenticated is returned when no valid credentials are found.
var ErrUnauthenticated = errors.New("unauthenticated")

// keyPrefix is the fixed prefix of issued API keys.
const keyPrefix = "ctk_"

// ExtractBearerToken extracts a ctk_ API key from an Authorization
// header value.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrUnauthenticated
	}
	token := header
	token = strings.TrimPrefix(token, "Bearer ")
	token = strings.TrimPrefix(token, "bearer ")
	if !strings.HasPrefix(token, keyPrefix) {
		return "", ErrUnauthenticated
	}
	return token, nil
}
