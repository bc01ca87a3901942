// Package cpf formats and validates Brazilian individual taxpayer numbers (CPF).
//
// A CPF is eleven decimal digits; the last two are modulo-11 check digits computed
// over the preceding ones. Every function here is total: malformed input produces an
// empty or partial result, never an error or a panic, so the same calls serve an
// input-change handler (Format) and a submission check (IsValid).
//
// Display form grows with the number of digits typed:
//
//	111          -> 111
//	1114         -> 111.4
//	1114447      -> 111.444.7
//	11144477735  -> 111.444.777-35
package cpf

import (
	"math/rand/v2"
	"strings"
)

const (
	// Length is the number of digits in a complete CPF.
	Length = 11
	// BaseLength is the number of digits covered by the check digits.
	BaseLength = 9
)

// Digits returns the ASCII decimal digits of raw, in order. Nothing is truncated.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Format punctuates the first eleven digits of raw as DDD.DDD.DDD-DD. Partial
// input is punctuated as far as it goes; digits past the eleventh are dropped.
func Format(raw string) string {
	d := Digits(raw)
	if len(d) > Length {
		d = d[:Length]
	}

	switch n := len(d); {
	case n <= 3:
		return d
	case n <= 6:
		return d[:3] + "." + d[3:]
	case n <= 9:
		return d[:3] + "." + d[3:6] + "." + d[6:]
	default:
		return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	}
}

// IsValid reports whether raw carries exactly eleven digits, not all equal, whose
// check digits match. Punctuation is ignored.
func IsValid(raw string) bool {
	d := Digits(raw)
	if len(d) != Length || isRepeated(d) {
		return false
	}

	check, ok := CheckDigits(d[:BaseLength])
	return ok && d[BaseLength:] == check
}

// Normalize returns the eleven digits of a valid CPF, or "" if raw is not valid.
// This is the form persisted and used as a lookup key.
func Normalize(raw string) string {
	if !IsValid(raw) {
		return ""
	}
	return Digits(raw)
}

// Mask hides everything but the middle six digits of a complete CPF, e.g.
// ***.444.777-**. Anything that is not eleven digits masks to "".
func Mask(raw string) string {
	d := Digits(raw)
	if len(d) != Length {
		return ""
	}
	return "***." + d[3:6] + "." + d[6:9] + "-**"
}

// CheckDigits computes the two check digits for a nine-digit base. ok is false if
// base is not exactly nine ASCII digits.
func CheckDigits(base string) (check string, ok bool) {
	if len(base) != BaseLength || Digits(base) != base {
		return "", false
	}

	first := checkDigit(base, 10)
	second := checkDigit(base+string(rune('0'+first)), 11)
	return string([]byte{byte('0' + first), byte('0' + second)}), true
}

// Generate returns a random valid CPF as eleven digits.
func Generate(r *rand.Rand) string {
	base := make([]byte, BaseLength)
	for {
		for i := range base {
			base[i] = byte('0' + r.IntN(10))
		}
		if !isRepeated(string(base)) {
			break
		}
	}

	check, _ := CheckDigits(string(base))
	return string(base) + check
}

// checkDigit weighs digits[0:topWeight-1] with topWeight, topWeight-1, ..., 2.
func checkDigit(digits string, topWeight int) int {
	sum := 0
	for i := 0; i < topWeight-1; i++ {
		sum += int(digits[i]-'0') * (topWeight - i)
	}

	r := (sum * 10) % 11
	if r == 10 {
		return 0
	}
	return r
}

func isRepeated(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}
