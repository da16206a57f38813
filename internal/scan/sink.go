package scan

import (
	"os"
	"strings"
)

// WriteCodes writes codes to path, one per line, newline-terminated.
// Callers pass the sorted set; nothing is reordered here.
func WriteCodes(path string, codes []string) error {
	var b strings.Builder
	for _, code := range codes {
		b.WriteString(code)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}
