package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/locvowork/epms/internal/domain"
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return invalid("missing %s", strings.Join(missing, ", "))
}

// normalizeMonth accepts an English month name in any case and returns it
// capitalized, e.g. "march" -> "March".
func normalizeMonth(s string) (string, error) {
	s = strings.TrimSpace(s)
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), s) {
			return m.String(), nil
		}
	}
	return "", invalid("invalid month %q", s)
}
