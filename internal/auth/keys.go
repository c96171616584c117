package auth

import (
	"crypto/rand"
	"sync"
)

// hs512KeySize is the minimum key length for HMAC-SHA512 signing.
const hs512KeySize = 64

// KeyProvider owns the symmetric signing key for the process lifetime. The
// key is generated on first use and never persisted, so a restart invalidates
// every previously issued token. That is the documented operational tradeoff
// of keeping tokens fully stateless.
type KeyProvider struct {
	once sync.Once
	key  []byte
}

// NewKeyProvider returns an empty provider; the key is generated lazily.
func NewKeyProvider() *KeyProvider {
	return &KeyProvider{}
}

// SigningKey returns the process signing key, generating it on first call.
// Concurrent first calls all observe the same key.
func (p *KeyProvider) SigningKey() []byte {
	p.once.Do(func() {
		key := make([]byte, hs512KeySize)
		if _, err := rand.Read(key); err != nil {
			// crypto/rand never fails on supported platforms; a failure here
			// means the process cannot do anything secure.
			panic("auth: unable to generate signing key: " + err.Error())
		}
		p.key = key
	})
	return p.key
}
