// Package file reads sheets from the local filesystem.
package file

import (
	"bufio"
	"os"
	"strings"
)

// ReadList returns the non-empty, non-comment lines of a text file in
// order. Lines starting with '#' after trimming are comments.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
