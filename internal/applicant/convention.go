// internal/applicant/convention.go
package applicant

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// FlagConvention selects which string spellings count as a true flag.
type FlagConvention string

const (
	// ConventionYesNo treats "Yes" as true. It is the default.
	ConventionYesNo FlagConvention = "yes_no"
	// ConventionCheckbox treats an HTML checkbox value "on" as true.
	ConventionCheckbox FlagConvention = "checkbox"
	// ConventionAny accepts both spellings.
	ConventionAny FlagConvention = "any"
)

// ParseConvention resolves a configured convention name. An empty name
// yields ConventionYesNo.
func ParseConvention(name string) (FlagConvention, error) {
	switch FlagConvention(strings.ToLower(strings.TrimSpace(name))) {
	case "", ConventionYesNo:
		return ConventionYesNo, nil
	case ConventionCheckbox:
		return ConventionCheckbox, nil
	case ConventionAny:
		return ConventionAny, nil
	}
	return "", fmt.Errorf("unknown flag convention %q", name)
}

// ParseFlag reports whether v is a true flag under conv. String spellings
// match case-insensitively after trimming. Booleans and non-zero numbers
// are true under every convention; everything else, including nil, is false.
func ParseFlag(v interface{}, conv FlagConvention) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		switch conv {
		case ConventionCheckbox:
			return s == "on"
		case ConventionAny:
			return s == "yes" || s == "on"
		default:
			return s == "yes"
		}
	}

	f, err := cast.ToFloat64E(v)
	return err == nil && f != 0
}
