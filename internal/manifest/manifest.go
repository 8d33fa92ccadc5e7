// Package manifest reads the ordered list of instrument ids to process.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Read loads instrument ids from a text file, one per line, in file order.
// Blank lines and lines starting with '#' are skipped. Ids are opaque — the
// manifest does not know or care how a source resolves them.
func Read(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return ids, nil
}
