package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/aretw0/rapidhire/pkg/ports"
)

// KeySize is the required key length (AES-256).
const KeySize = 32

var (
	// ErrInvalidKey is returned for keys that are not KeySize bytes long.
	ErrInvalidKey = errors.New("encryption key must be 32 bytes (AES-256)")

	// ErrNotSealed is returned when a stored state carries no ciphertext.
	ErrNotSealed = errors.New("state is missing encrypted data envelope")
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot open a state.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

func (c EncryptionConfig) validate() error {
	if len(c.ActiveKey) != KeySize {
		return ErrInvalidKey
	}
	for i, k := range c.FallbackKeys {
		if len(k) != KeySize {
			return fmt.Errorf("fallback key %d: %w", i, ErrInvalidKey)
		}
	}
	return nil
}

type encryptionMiddleware struct {
	next   ports.StateStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals the whole state with
// AES-GCM. The backend only sees an envelope carrying the session ID, the
// stage and the update time, so listing and TTLs keep working.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	plainText, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt state: %w", err)
	}

	envelope := &domain.State{
		SessionID: state.SessionID,
		Stage:     state.Stage,
		UpdatedAt: state.UpdatedAt,
		Sealed:    ciphertext,
	}
	return m.next.Save(ctx, sessionID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Fail closed: a plain state is never trusted once encryption is on.
	if len(envelope.Sealed) == 0 {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotSealed)
	}

	plainText, err := decryptWithRotation(envelope.Sealed, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt state: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(plainText, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted state: %w", err)
	}
	return &state, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
