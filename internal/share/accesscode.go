package share

import (
	"strings"

	"sharebox-go/internal/validation"
)

// AccessCodeInput is the six-box code entry of the receive view.
type AccessCodeInput struct {
	digits [validation.AccessCodeLength]string
}

// ParseAccessCode fills an input from s as if it had been pasted.
func ParseAccessCode(s string) *AccessCodeInput {
	in := &AccessCodeInput{}
	in.Paste(s)
	return in
}

// Set writes one position. Values longer than one character are refused and
// so are non-digits; an empty value clears the position.
func (in *AccessCodeInput) Set(index int, value string) bool {
	if index < 0 || index >= len(in.digits) {
		return false
	}
	if value != "" && (len(value) != 1 || value[0] < '0' || value[0] > '9') {
		return false
	}
	in.digits[index] = value
	return true
}

func (in *AccessCodeInput) Digit(index int) string {
	if index < 0 || index >= len(in.digits) {
		return ""
	}
	return in.digits[index]
}

// Paste keeps the digits of s and writes them from the first position.
// Positions past the pasted digits keep their values. It returns the index
// that should receive focus next.
func (in *AccessCodeInput) Paste(s string) int {
	n := 0
	for i := 0; i < len(s) && n < len(in.digits); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			in.digits[n] = s[i : i+1]
			n++
		}
	}
	return min(n, len(in.digits)-1)
}

func (in *AccessCodeInput) Code() string {
	return strings.Join(in.digits[:], "")
}

func (in *AccessCodeInput) Complete() bool {
	return validation.ValidateAccessCode(in.Code()) == nil
}

func (in *AccessCodeInput) Reset() {
	in.digits = [validation.AccessCodeLength]string{}
}
