package errors

import (
	"path"
	"strings"
	"unicode"
)

// maxTextLength bounds free-text filter values such as company names.
const maxTextLength = 256

// ValidateText checks a free-text filter value (company, location, sales rep).
// Empty values are allowed and mean "unset".
func ValidateText(field, value string) error {
	if len(value) > maxTextLength {
		return New(ErrCodeInvalidFilter, "%s too long (max %d characters)", field, maxTextLength)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFilter, "%s contains invalid control characters", field)
		}
	}
	return nil
}

// imageExtensions lists the file extensions accepted for gallery images and
// photo submissions.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// IsImageName reports whether name has a supported image extension.
func IsImageName(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

// ValidateImageName validates a bare image file name, as listed in the
// generator roster or attached to a submission.
func ValidateImageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "image name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "image name cannot contain path separators: %q", name)
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidInput, "image name cannot be a hidden file: %q", name)
	}
	if !IsImageName(name) {
		return New(ErrCodeInvalidInput, "unsupported image type: %q", name)
	}
	return nil
}

const maxPathLength = 500

// pathRules are checked in order by [ValidatePath].
var pathRules = []struct {
	bad func(string) bool
	msg string
}{
	{func(p string) bool { return p == "" }, "path cannot be empty"},
	{func(p string) bool { return len(p) > maxPathLength }, "path too long"},
	{func(p string) bool { return strings.IndexFunc(p, unicode.IsControl) >= 0 }, "path contains invalid characters"},
	{func(p string) bool { return strings.HasPrefix(p, "/") }, "path must be relative"},
	{func(p string) bool { return strings.Contains(p, "..") }, "path cannot contain .."},
	{func(p string) bool { return strings.Contains(p, "\\") }, "path cannot contain backslashes"},
}

// ValidatePath checks a relative asset path such as "images/x.jpg" before
// it is resolved against an image directory.
func ValidatePath(p string) error {
	for _, r := range pathRules {
		if r.bad(p) {
			return New(ErrCodeInvalidPath, "%s", r.msg)
		}
	}
	return nil
}

// IsRemote reports whether src is an http(s) URL rather than a relative asset path.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
