package cryptox

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

const (
	totpPeriod = 30
	totpDigits = 6
	totpSkew   = 1
)

var totpEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

func decodeTOTPSecret(secret string) ([]byte, error) {
	s := strings.ToUpper(strings.ReplaceAll(secret, " ", ""))
	s = strings.TrimRight(s, "=")
	return totpEncoding.DecodeString(s)
}

// hotp implements RFC 4226 with SHA1 and dynamic truncation.
func hotp(key []byte, counter uint64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", totpDigits, bin%1_000_000)
}

// TOTPCode returns the RFC 6238 code (SHA1, 6 digits, 30s) for the base32
// secret at instant t.
func TOTPCode(secret string, t time.Time) (string, error) {
	key, err := decodeTOTPSecret(secret)
	if err != nil {
		return "", fmt.Errorf("decode totp secret: %w", err)
	}
	return hotp(key, uint64(t.Unix()/totpPeriod)), nil
}

// ValidateTOTP accepts codes from the current step and one step either side.
func ValidateTOTP(secret, code string, t time.Time) bool {
	key, err := decodeTOTPSecret(secret)
	if err != nil || len(code) != totpDigits {
		return false
	}
	counter := t.Unix() / totpPeriod
	for i := -totpSkew; i <= totpSkew; i++ {
		c := counter + int64(i)
		if c < 0 {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(hotp(key, uint64(c))), []byte(code)) == 1 {
			return true
		}
	}
	return false
}
