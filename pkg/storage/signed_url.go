package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignedToken is the verified content of a signed download token.
type SignedToken struct {
	SubjectID string
	Resource  string
	ExpiresAt time.Time
}

// SignedURLSigner creates and validates signed download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *SignedURLSigner) WithClock(now func() time.Time) *SignedURLSigner {
	if now != nil {
		s.now = now
	}
	return s
}

// Generate returns a token granting access to resource of subjectID until the
// signer TTL elapses.
func (s *SignedURLSigner) Generate(subjectID, resource string) (string, time.Time, error) {
	if subjectID == "" || resource == "" {
		return "", time.Time{}, fmt.Errorf("subject and resource required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	encodedResource := base64.RawURLEncoding.EncodeToString([]byte(resource))
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	signature := s.sign(subjectID, ts, encodedResource)
	token := strings.Join([]string{subjectID, ts, encodedResource, signature}, ".")
	return token, expiresAt, nil
}

// Parse validates a token. When allowExpired is true the expiry check is
// skipped.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (SignedToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return SignedToken{}, fmt.Errorf("invalid token format")
	}
	subjectID, ts, encodedResource, signature := parts[0], parts[1], parts[2], parts[3]

	expected := s.sign(subjectID, ts, encodedResource)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return SignedToken{}, fmt.Errorf("invalid token signature")
	}

	rawResource, err := base64.RawURLEncoding.DecodeString(encodedResource)
	if err != nil {
		return SignedToken{}, fmt.Errorf("decode resource: %w", err)
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return SignedToken{}, fmt.Errorf("invalid timestamp")
	}
	expiresAt := time.Unix(expUnix, 0)
	if !allowExpired && s.now().After(expiresAt) {
		return SignedToken{}, fmt.Errorf("token expired")
	}
	return SignedToken{SubjectID: subjectID, Resource: string(rawResource), ExpiresAt: expiresAt}, nil
}

// Verify checks that token grants access to resource of subjectID.
func (s *SignedURLSigner) Verify(token, subjectID, resource string) error {
	parsed, err := s.Parse(token, false)
	if err != nil {
		return err
	}
	if parsed.SubjectID != subjectID || parsed.Resource != resource {
		return fmt.Errorf("token does not grant access to %s", resource)
	}
	return nil
}

func (s *SignedURLSigner) sign(subjectID, ts, encodedResource string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(subjectID + "|" + ts + "|" + encodedResource))
	return hex.EncodeToString(mac.Sum(nil))
}
