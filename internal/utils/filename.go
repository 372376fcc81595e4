package utils

import (
	"path"
	"strings"
)

// SecureFilename reduces a client-supplied filename to a safe, flat name:
// directory parts are dropped, whitespace becomes "_", only ASCII letters,
// digits, '.', '_' and '-' are kept, and leading/trailing dots and
// underscores are trimmed. The result may be empty.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}
