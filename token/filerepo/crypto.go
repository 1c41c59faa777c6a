package filerepo

import (
	"crypto/rand"
	"encoding/json"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	clienterrors "github.com/authdoc/go-authdoc-client/internal/errors"
)

// envelope is the on-disk format for an encrypted credential file. The salt
// is per-file, so the same passphrase yields different keys across files.
type envelope struct {
	Version int    `json:"v"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Box     []byte `json:"box"`
}

const envelopeVersion = 1

// scrypt parameters per the interactive-login recommendation.
const (
	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

func deriveKey(passphrase string, salt []byte) (*[32]byte, error) {
	keyBytes, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, 32)
	if err != nil {
		return nil, errors.Wrap(err, "[deriveKey] scrypt.Key")
	}
	var key [32]byte
	copy(key[:], keyBytes)
	return &key, nil
}

func seal(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "[seal] rand.Read salt")
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, errors.Wrap(err, "[seal] rand.Read nonce")
	}

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}

	env := envelope{
		Version: envelopeVersion,
		Salt:    salt,
		Nonce:   nonce[:],
		Box:     secretbox.Seal(nil, plaintext, &nonce, key),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, "[seal] Marshal")
	}
	return data, nil
}

func open(data []byte, passphrase string) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || len(env.Box) == 0 {
		return nil, errors.Wrap(clienterrors.ErrStoreCorrupt, "[open] not an encrypted envelope")
	}
	if len(env.Nonce) != 24 {
		return nil, errors.Wrap(clienterrors.ErrStoreCorrupt, "[open] bad nonce length")
	}

	key, err := deriveKey(passphrase, env.Salt)
	if err != nil {
		return nil, err
	}

	var nonce [24]byte
	copy(nonce[:], env.Nonce)

	plaintext, ok := secretbox.Open(nil, env.Box, &nonce, key)
	if !ok {
		return nil, errors.Wrap(clienterrors.ErrWrongPassphrase, "[open] secretbox.Open")
	}
	return plaintext, nil
}

// isSealed reports whether data looks like an encrypted envelope rather
// than a plaintext credential file.
func isSealed(data []byte) bool {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false
	}
	return len(env.Box) > 0
}
