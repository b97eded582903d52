package storage

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
)

// encryptData wraps data in an Age envelope under recipient. Used for every
// write the disk cache tier makes once a password has been set: the
// verification file, and each JSON cache envelope in turn.
func encryptData(data []byte, recipient *age.ScryptRecipient) ([]byte, error) {
	var buf bytes.Buffer

	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("age: open writer: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("age: write payload: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("age: close writer: %w", err)
	}

	return buf.Bytes(), nil
}

// decryptData reverses encryptData given the matching scrypt identity. A
// wrong password surfaces here as an opaque age error, which callers turn
// into "incorrect password" so the cache password isn't echoed back.
func decryptData(data []byte, identity *age.ScryptIdentity) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, fmt.Errorf("age: %w", err)
	}

	return io.ReadAll(r)
}
