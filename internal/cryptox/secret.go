package cryptox

import (
	"encoding/base32"

	"github.com/dmitrijs2005/otpkeeper/internal/common"
)

// Secret sizes in bytes for newly generated keys.
const (
	TOTPSecretSize = 20
	HOTPSecretSize = 32
)

var b32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret returns size random bytes as unpadded upper-case Base32.
func GenerateSecret(size int) string {
	raw := common.GenerateRandByteArray(size)
	defer common.WipeByteArray(raw)
	return b32NoPad.EncodeToString(raw)
}
