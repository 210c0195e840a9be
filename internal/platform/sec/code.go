// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

var ten = big.NewInt(10)

// NumericCode returns a string of exactly length decimal digits.
//
// Each digit is drawn independently and uniformly from 0-9 using the OS
// random source; leading zeros are kept.
func NumericCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("sec: invalid code length %d", length)
	}

	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		digit, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("sec: failed to read random digit: %w", err)
		}
		builder.WriteByte(byte('0' + digit.Int64()))
	}

	return builder.String(), nil
}
