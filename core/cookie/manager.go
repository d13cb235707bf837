package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"
)

const (
	// MaxCookieSize is the default limit for a serialized Set-Cookie value.
	MaxCookieSize = 4096

	minSecretLength = 32
)

// Manager seals cookie values with AES-256-GCM. The first secret encrypts;
// every secret is tried on decryption so secrets can be rotated without
// logging visitors out.
type Manager struct {
	aeads    []cipher.AEAD
	defaults Attributes
	maxSize  int
}

// New creates a manager. Empty secrets are ignored; each remaining secret must
// be at least 32 characters long.
func New(secrets []string, opts ...Option) (*Manager, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool {
		return strings.TrimSpace(s) == ""
	})
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	aeads := make([]cipher.AEAD, 0, len(secrets))
	for i, secret := range secrets {
		if len(secret) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d",
				ErrSecretTooShort, i, len(secret), minSecretLength)
		}
		aead, err := newAEAD(secret)
		if err != nil {
			return nil, err
		}
		aeads = append(aeads, aead)
	}

	return &Manager{
		aeads: aeads,
		defaults: apply(Attributes{
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}, opts),
		maxSize: MaxCookieSize,
	}, nil
}

// newAEAD derives a 256-bit key from the whole secret instead of truncating it.
func newAEAD(secret string) (cipher.AEAD, error) {
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts value and writes it as cookie name. The cookie name is bound
// into the ciphertext, so a sealed value cannot be replayed under another name.
func (m *Manager) Seal(w http.ResponseWriter, name, value string, opts ...Option) error {
	if name == "" {
		return ErrInvalidName
	}

	aead := m.aeads[0]
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := aead.Seal(nonce, nonce, []byte(value), []byte(name))

	attrs := apply(m.defaults, opts)
	c := &http.Cookie{
		Name:     name,
		Value:    base64.RawURLEncoding.EncodeToString(sealed),
		Path:     attrs.Path,
		Domain:   attrs.Domain,
		MaxAge:   attrs.MaxAge,
		Secure:   attrs.Secure,
		HttpOnly: attrs.HttpOnly,
		SameSite: attrs.SameSite,
	}
	if size := len(c.String()); size > m.maxSize {
		return ErrCookieTooLarge{Name: name, Size: size, Max: m.maxSize}
	}

	http.SetCookie(w, c)
	return nil
}

// Open reads cookie name from r and decrypts it.
func (m *Manager) Open(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, aead := range m.aeads {
		if len(raw) < aead.NonceSize()+aead.Overhead() {
			return "", ErrInvalidFormat
		}
		nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
		if plain, err := aead.Open(nil, nonce, ciphertext, []byte(name)); err == nil {
			return string(plain), nil
		}
	}
	return "", ErrDecryptionFailed
}

// Delete expires cookie name using the manager's default path and domain.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.defaults.Secure,
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
	})
}
