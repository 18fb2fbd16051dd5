package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultSignedURLTTL is how long order-file links stay valid. Print
// providers fetch artwork asynchronously, so links must outlive the
// checkout by a wide margin.
const DefaultSignedURLTTL = 7 * 24 * time.Hour

// Signer mints and verifies time-limited URLs for stored files.
type Signer struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

// NewSigner builds a Signer. The secret must be stable across restarts
// or issued links die early.
func NewSigner(secret, baseURL string) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("storage: signing secret is required")
	}
	return &Signer{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}, nil
}

// SignedURL returns a URL for the key that Verify accepts until expiry.
func (s *Signer) SignedURL(key string, ttl time.Duration) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}
	expires := s.now().Add(ttl).Unix()
	sig := s.sign(cleanKey, expires)

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", sig)
	return fmt.Sprintf("%s/%s?%s", s.baseURL, cleanKey, q.Encode()), nil
}

// Verify checks a key's signature and expiry as presented in query
// parameters.
func (s *Signer) Verify(key, expiresParam, sig string) error {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	expires, err := strconv.ParseInt(expiresParam, 10, 64)
	if err != nil {
		return errors.New("storage: malformed expiry")
	}
	if s.now().Unix() > expires {
		return errors.New("storage: link expired")
	}
	want := s.sign(cleanKey, expires)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return errors.New("storage: bad signature")
	}
	return nil
}

func (s *Signer) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
