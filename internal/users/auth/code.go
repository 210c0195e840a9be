// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// DigitGenerator draws confirmation codes of a fixed number of uniform decimal digits.
type DigitGenerator struct {
	length int
}

// NewDigitGenerator returns a generator for codes of [constants.ConfirmationCodeLength] digits.
func NewDigitGenerator() *DigitGenerator {
	return &DigitGenerator{length: constants.ConfirmationCodeLength}
}

// Generate returns a fresh code. Repeats are possible and harmless.
func (generator *DigitGenerator) Generate() (string, error) {
	return sec.NumericCode(generator.length)
}
