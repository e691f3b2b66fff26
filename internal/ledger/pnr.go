package ledger

import (
	"math/rand/v2"
	"strings"
)

const (
	pnrAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	pnrSuffix   = 6
)

// newPNR builds a record locator: the airline's two-letter code plus
// six random characters from the 36-symbol alphabet. Uniqueness is the
// caller's job; it collision-checks against the ledger and regenerates.
func newPNR(airlineCode string) string {
	var b strings.Builder
	b.Grow(len(airlineCode) + pnrSuffix)
	b.WriteString(strings.ToUpper(airlineCode))
	for i := 0; i < pnrSuffix; i++ {
		b.WriteByte(pnrAlphabet[rand.IntN(len(pnrAlphabet))])
	}
	return b.String()
}
