package crypto

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRandomCode returns an upper-case code of length n without look-alike characters.
func GenerateRandomCode(n uint) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[RandIntn(len(alphabet))]
	}
	return string(b)
}

// RandInt64n returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandInt64n(n int64) int64 {
	r, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		panic(err)
	}

	return r.Int64()
}

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	return int(RandInt64n(int64(n)))
}

// RandRange returns a uniform random value in [a, b]. It panics if a > b.
func RandRange(a, b int64) int64 {
	return RandInt64n(b-a+1) + a
}
