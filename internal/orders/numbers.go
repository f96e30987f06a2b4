package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// NewOrderNumber builds a human-readable order reference. The millisecond
// timestamp plus a random 3-digit suffix makes collisions unlikely; the
// unique index on order_number catches the rare remainder.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%03d", now.UnixMilli(), randomSuffix())
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
