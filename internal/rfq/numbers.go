package rfq

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// NewRFQNumber builds a human-readable request reference. The millisecond
// timestamp plus a random 3-digit suffix makes collisions unlikely; the
// unique index on rfq_number catches the rare remainder.
func NewRFQNumber(now time.Time) string {
	return fmt.Sprintf("RFQ-%d-%03d", now.UnixMilli(), randomSuffix())
}

func defaultNow() time.Time {
	return time.Now().UTC()
}

func randomSuffix() int {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return int(time.Now().UnixNano() % 1000)
	}
	return int(n.Int64())
}
