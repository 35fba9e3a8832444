package helpers

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"
)

const DefaultPinCodeSize = 6

const digits = "0123456789"

// PinGenerator returns a candidate PIN code of the given size.
type PinGenerator func(size int) string

// GeneratePinCode returns size random decimal digits.
func GeneratePinCode(size int) string {
	if size <= 0 {
		size = DefaultPinCodeSize
	}
	return randomString(size, digits)
}

// GenerateOrderNum returns a 12 character order number: the order date as
// YYMMDD followed by six random digits.
func GenerateOrderNum(now time.Time) string {
	return now.UTC().Format("060102") + randomString(6, digits)
}

func randomString(size int, chars string) string {
	var b strings.Builder
	b.Grow(size)
	max := big.NewInt(int64(len(chars)))
	for i := 0; i < size; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b.WriteByte(chars[n.Int64()])
	}
	return b.String()
}
