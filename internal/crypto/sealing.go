package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

var (
	ErrInvalidKeySize    = errors.New("invalid key size: must be 32 bytes for AES-256")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// SealedBox is the result of sealing a secret: a random nonce and the
// authenticated ciphertext, both base64-encoded for safe storage.
type SealedBox struct {
	IV   string `json:"iv"`
	Data string `json:"data"`
}

// Encode packs the box into a single text value ("iv.data") suitable for a
// database column.
func (b SealedBox) Encode() string {
	return b.IV + "." + b.Data
}

// DecodeBox parses a value produced by Encode.
func DecodeBox(s string) (SealedBox, error) {
	iv, data, ok := strings.Cut(s, ".")
	if !ok || iv == "" || data == "" {
		return SealedBox{}, ErrInvalidCiphertext
	}
	return SealedBox{IV: iv, Data: data}, nil
}

// Sealer encrypts and decrypts small secrets (API keys, OAuth tokens) with a
// single process-wide AES-256-GCM key. The key is injected at construction so
// tests can substitute a known one. No rotation or multi-key support: a
// deliberate limitation.
type Sealer struct {
	key []byte
}

// NewSealer creates a Sealer from a raw 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKeySize
	}
	s := &Sealer{key: make([]byte, 32)}
	copy(s.key, key)
	return s, nil
}

// Seal encrypts plaintext with a fresh random 96-bit nonce.
func (s *Sealer) Seal(plaintext string) (SealedBox, error) {
	gcm, err := s.aead()
	if err != nil {
		return SealedBox{}, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return SealedBox{}, err
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	return SealedBox{
		IV:   base64.StdEncoding.EncodeToString(nonce),
		Data: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// Open decrypts a sealed box. Returns ErrDecryptionFailed when authentication
// fails (tampered data, wrong key) and ErrInvalidCiphertext on malformed
// input.
func (s *Sealer) Open(box SealedBox) (string, error) {
	nonce, err := base64.StdEncoding.DecodeString(box.IV)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	ciphertext, err := base64.StdEncoding.DecodeString(box.Data)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	gcm, err := s.aead()
	if err != nil {
		return "", err
	}
	if len(nonce) != gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// SealEncoded seals plaintext and returns the encoded column value.
func (s *Sealer) SealEncoded(plaintext string) (string, error) {
	box, err := s.Seal(plaintext)
	if err != nil {
		return "", err
	}
	return box.Encode(), nil
}

// OpenEncoded decrypts a value produced by SealEncoded.
func (s *Sealer) OpenEncoded(encoded string) (string, error) {
	box, err := DecodeBox(encoded)
	if err != nil {
		return "", err
	}
	return s.Open(box)
}

func (s *Sealer) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// GenerateKey generates a random 256-bit (32-byte) key for AES-256.
func GenerateKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}
