package crypto

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"filippo.io/age"
)

// Sealer produces and opens opaque tokens carrying sensitive payloads
// (team invites) using age X25519 encryption. Tokens are URL-safe base64
// so they can travel in links and query strings.
type Sealer struct {
	identity  *age.X25519Identity
	recipient *age.X25519Recipient
}

// NewSealer creates a Sealer from an age identity string. If key is empty a
// new identity is generated; tokens sealed with it die with the process.
func NewSealer(key string) (*Sealer, error) {
	var identity *age.X25519Identity
	var err error

	if key == "" {
		identity, err = age.GenerateX25519Identity()
		if err != nil {
			return nil, fmt.Errorf("generating identity: %w", err)
		}
	} else {
		identity, err = age.ParseX25519Identity(key)
		if err != nil {
			return nil, fmt.Errorf("parsing identity: %w", err)
		}
	}

	return &Sealer{
		identity:  identity,
		recipient: identity.Recipient(),
	}, nil
}

// GenerateKey generates a new sealing key and returns it in age format.
func GenerateKey() (string, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("generating identity: %w", err)
	}
	return identity.String(), nil
}

// Seal encrypts the payload and returns a URL-safe token.
func (s *Sealer) Seal(payload []byte) (string, error) {
	var buf bytes.Buffer

	w, err := age.Encrypt(&buf, s.recipient)
	if err != nil {
		return "", fmt.Errorf("creating encryptor: %w", err)
	}

	if _, err := w.Write(payload); err != nil {
		return "", fmt.Errorf("writing payload: %w", err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing encryptor: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Open decodes and decrypts a sealed token.
func (s *Sealer) Open(token string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), s.identity)
	if err != nil {
		return nil, fmt.Errorf("creating decryptor: %w", err)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}

	return payload, nil
}
