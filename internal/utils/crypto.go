// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
)

// One class per strong_password requirement; a generated password draws from each.
var passwordClasses = []string{
	"ABCDEFGHJKLMNPQRSTUVWXYZ",
	"abcdefghijkmnopqrstuvwxyz",
	"23456789",
	"#$%&*+-=?@",
}

const generatedPasswordLength = 20

// GeneratePassword returns a random password that satisfies the strong_password rule. It is
// used for the bootstrap admin when no password is configured.
func GeneratePassword() (string, error) {
	buf := make([]byte, generatedPasswordLength)
	for i := range buf {
		class := passwordClasses[i%len(passwordClasses)]
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		buf[i] = c
	}

	// Shuffle so the class order is not predictable.
	for i := len(buf) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		buf[i], buf[j.Int64()] = buf[j.Int64()], buf[i]
	}
	return string(buf), nil
}

func randomChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}

// HashBytes is the hex sha256 of data, stored as the checksum of uploaded attachments.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
