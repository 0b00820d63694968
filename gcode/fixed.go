package gcode

import (
	"errors"
	"math"
	"strconv"
)

// Fixed is a fixed-point value; the scale is chosen by the caller.
type Fixed int64

const (
	// Scale is the default distance/feed scale: thousandths of the input unit.
	Scale Fixed = 1000

	// TempScale is used for temperatures, which are kept in whole units.
	TempScale Fixed = 1
)

var (
	ErrSyntax = errors.New("invalid number")
	ErrRange  = errors.New("number out of range")
)

// NumberError reports a malformed numeric literal.
type NumberError struct {
	Token Token
	Err   error
}

func (e *NumberError) Error() string {
	return "bad number " + strconv.Quote(e.Token.String()) + ": " + e.Err.Error()
}
func (e *NumberError) Unwrap() error { return e.Err }

// Float returns f as a real number at the given scale.
func (f Fixed) Float(scale Fixed) float64 {
	return float64(f) / float64(scale)
}

// Format renders f in input units, as short as possible.
func (f Fixed) Format(scale Fixed) string {
	return strconv.FormatFloat(f.Float(scale), 'f', -1, 64)
}

// Add returns f+g, or false when the sum overflows.
func (f Fixed) Add(g Fixed) (Fixed, bool) {
	sum := f + g
	if (sum > f) != (g > 0) {
		return 0, false
	}
	return sum, true
}

// ToFixed will convert v to fixed-point, rounding half away from zero.
//
// It returns false if the result does not fit.
func ToFixed(v float64, scale Fixed) (Fixed, bool) {
	r := math.Round(v * float64(scale))
	if math.IsNaN(r) || r >= math.MaxInt64 || r < math.MinInt64 {
		return 0, false
	}
	return Fixed(r), true
}

func (t Token) numberError(err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return &NumberError{Token: t, Err: ErrRange}
	}
	return &NumberError{Token: t, Err: ErrSyntax}
}

// Fixed converts the token value to fixed-point.
//
// Fractional literals are parsed as floats, everything else as integers;
// the scale is applied the same way to both.
func (t Token) Fixed(scale Fixed) (Fixed, error) {
	return convert(t, t.Raw, scale)
}

// FixedLenient converts like Fixed but accepts the longest numeric
// prefix of the literal, and yields 0 when there is none.
func (t Token) FixedLenient(scale Fixed) Fixed {
	s := numericPrefix(t.Raw, t.Frac)
	if s == "" {
		return 0
	}
	f, err := convert(t, s, scale)
	if err != nil {
		return 0
	}
	return f
}

func convert(t Token, s string, scale Fixed) (Fixed, error) {
	if t.Frac {
		// ParseFloat also takes exponents, hex and inf; only plain decimals are numbers here
		if numericPrefix(s, true) != s {
			return 0, &NumberError{Token: t, Err: ErrSyntax}
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, t.numberError(err)
		}
		f, ok := ToFixed(v, scale)
		if !ok {
			return 0, &NumberError{Token: t, Err: ErrRange}
		}
		return f, nil
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, t.numberError(err)
	}
	if scale != 0 && (v > math.MaxInt64/int64(scale) || v < math.MinInt64/int64(scale)) {
		return 0, &NumberError{Token: t, Err: ErrRange}
	}
	return Fixed(v) * scale, nil
}

// Int returns the token value as an integer. Command numbers are always
// integral, so a fractional literal is a syntax error.
func (t Token) Int() (int, error) {
	if t.Frac {
		return 0, &NumberError{Token: t, Err: ErrSyntax}
	}
	v, err := strconv.ParseInt(t.Raw, 10, 32)
	if err != nil {
		return 0, t.numberError(err)
	}
	return int(v), nil
}

// IntLenient parses the leading integer of the literal, or 0.
func (t Token) IntLenient() int {
	s := numericPrefix(t.Raw, false)
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0
	}
	return int(v)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// numericPrefix returns the longest prefix of s that is a signed decimal
// (with an optional fraction when frac is set).
func numericPrefix(s string, frac bool) string {
	var i, digits int
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if frac && i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}
	return s[:i]
}
