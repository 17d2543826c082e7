package noteid

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Length of a freshly minted identifier. 32 characters over a 62-symbol
// alphabet is ~190 bits of entropy; the id doubles as the bearer credential,
// so enumeration must stay infeasible.
const Length = 32

func Generate(length int) string {
	var sb strings.Builder
	for i := 0; i < length; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		sb.WriteByte(alphabet[n.Int64()])
	}
	return sb.String()
}

// New returns a fresh note identifier.
func New() string {
	return Generate(Length)
}
