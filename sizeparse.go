// sizeparse.go: human-readable byte size parsing ("10M", "1G", "512")
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"strconv"
	"strings"
)

// ParseSize parses a byte size string with an optional trailing K/M/G unit
// (case-insensitive, base 1024). A bare number with no unit is bytes.
// Accepts "10M", "1K", "1G", "100".
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, newComponentError(ErrCodeInvalidSize, "empty size string")
	}

	multiplier := int64(1)
	numeric := s
	switch last := s[len(s)-1]; last {
	case 'k', 'K':
		multiplier = 1 << 10
		numeric = s[:len(s)-1]
	case 'm', 'M':
		multiplier = 1 << 20
		numeric = s[:len(s)-1]
	case 'g', 'G':
		multiplier = 1 << 30
		numeric = s[:len(s)-1]
	}

	numeric = strings.TrimSpace(numeric)
	value, err := strconv.ParseInt(numeric, 10, 64)
	if err != nil {
		return 0, newComponentError(ErrCodeInvalidSize, "invalid size: "+s)
	}
	if value < 0 {
		return 0, newComponentError(ErrCodeInvalidSize, "negative size: "+s)
	}
	return value * multiplier, nil
}

// MustParseSize is ParseSize for callers that already know the string is
// well-formed (e.g. compiled-in defaults); it panics on error.
func MustParseSize(s string) int64 {
	v, err := ParseSize(s)
	if err != nil {
		panic(err)
	}
	return v
}
