package errors

import (
	"strings"
	"testing"
)

func TestValidators(t *testing.T) {
	company := func(s string) error { return ValidateText("company", s) }

	cases := []struct {
		fn   func(string) error
		in   string
		code Code // empty means valid
	}{
		{company, "", ""},
		{company, "Phantom Towing LLC", ""},
		{company, "Crème Towing", ""},
		{company, strings.Repeat("a", maxTextLength+1), ErrCodeInvalidFilter},
		{company, "tab\tin name", ErrCodeInvalidFilter},

		{ValidateImageName, "21267-1-century-rotator.jpg", ""},
		{ValidateImageName, "truck.JPEG", ""},
		{ValidateImageName, "truck.webp", ""},
		{ValidateImageName, "", ErrCodeInvalidInput},
		{ValidateImageName, "images/truck.jpg", ErrCodeInvalidInput},
		{ValidateImageName, `images\truck.jpg`, ErrCodeInvalidInput},
		{ValidateImageName, ".truck.jpg", ErrCodeInvalidInput},
		{ValidateImageName, "brochure.pdf", ErrCodeInvalidInput},

		{ValidatePath, "images/truck.jpg", ""},
		{ValidatePath, "truck.jpg", ""},
		{ValidatePath, "", ErrCodeInvalidPath},
		{ValidatePath, strings.Repeat("p", maxPathLength+1), ErrCodeInvalidPath},
		{ValidatePath, "/etc/passwd", ErrCodeInvalidPath},
		{ValidatePath, "images/../secret", ErrCodeInvalidPath},
		{ValidatePath, "nul\x00byte", ErrCodeInvalidPath},
		{ValidatePath, `images\truck.jpg`, ErrCodeInvalidPath},
	}
	for _, tc := range cases {
		err := tc.fn(tc.in)
		if got := GetCode(err); got != tc.code {
			t.Errorf("validate %q: code %q, want %q (err %v)", tc.in, got, tc.code, err)
		}
	}
}

func TestIsRemote(t *testing.T) {
	for src, want := range map[string]bool{
		"https://cdn.example.com/a.jpg": true,
		"http://cdn.example.com/a.jpg":  true,
		"images/a.jpg":                  false,
		"ftp://cdn.example.com/a.jpg":   false,
	} {
		if got := IsRemote(src); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", src, got, want)
		}
	}
}
