package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLoad           = errors.New("load error")
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrSerialization  = errors.New("serialization error")
	ErrHash           = errors.New("hash error")
	ErrIncomparable   = errors.New("incomparable value")
	ErrUsage          = errors.New("usage error")
	ErrConfiguration  = errors.New("configuration error")
)

// Wrap builds an error message that names the subject (usually a file path)
// and the failing operation while tagging it with marker for later
// classification. The marker should be one of the exported sentinels above.
func Wrap(marker error, subject, operation string, err error) error {
	detail := buildDetail(subject, operation)
	if marker == nil {
		marker = ErrLoad
	}
	if err != nil {
		if detail == "" {
			return fmt.Errorf("%w: %w", marker, err)
		}
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	if detail == "" {
		return marker
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Operational reports whether err should be surfaced as an operational
// failure (missing or unreadable input, internal digest failure) rather than
// a data mismatch.
func Operational(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrSchemaMismatch)
}

// Cause strips the outermost marker and returns the remaining message, which
// is what the CLI prints next to a file path.
func Cause(err error) string {
	if err == nil {
		return ""
	}
	multi, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return err.Error()
	}
	errs := multi.Unwrap()
	if len(errs) != 2 || !isMarker(errs[0]) {
		return err.Error()
	}
	return errs[1].Error()
}

func isMarker(err error) bool {
	for _, marker := range []error{ErrLoad, ErrSchemaMismatch, ErrSerialization, ErrHash, ErrIncomparable, ErrUsage, ErrConfiguration} {
		if err == marker {
			return true
		}
	}
	return false
}

func buildDetail(subject, operation string) string {
	parts := make([]string, 0, 2)
	if subject = strings.TrimSpace(subject); subject != "" {
		parts = append(parts, subject)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	return strings.Join(parts, ": ")
}
