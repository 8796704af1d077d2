package config

import (
	"fmt"
	"os"
	"strings"
)

// Expand substitutes $NAME and ${NAME} references in s from env.
// "$$" escapes a literal dollar sign. A reference to a variable absent
// from env is an error; silent empty substitution is exactly the bug
// class this exists to catch.
func Expand(s string, env map[string]string) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}

	var missing []string

	// os.Expand maps "$$" via the empty-name case when the mapper sees
	// "$"; handle the escape before expansion instead.
	const escape = "\x00"

	escaped := strings.ReplaceAll(s, "$$", escape)

	expanded := os.Expand(escaped, func(name string) string {
		v, ok := env[name]
		if !ok {
			missing = append(missing, name)

			return ""
		}

		return v
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%w: $%s in %q", ErrUnsetVariable, missing[0], s)
	}

	return strings.ReplaceAll(expanded, escape, "$"), nil
}
