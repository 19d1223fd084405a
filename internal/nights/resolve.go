package nights

import (
	"fmt"
	"os"
	"strings"
)

// Resolve builds the Set from the layered input boundary: explicit
// command-line dates win, then a nights file, then the configured list.
// The configured list is the normal operational path; it keeps the
// hit-list in an auditable file instead of an ad-hoc typed range.
func Resolve(args []string, nightsFile string, configured []string) (Set, error) {
	if len(args) > 0 {
		return NewSet(args)
	}
	if strings.TrimSpace(nightsFile) != "" {
		values, err := readNightsFile(nightsFile)
		if err != nil {
			return Set{}, err
		}
		return NewSet(values)
	}
	return NewSet(configured)
}

func readNightsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read nights file: %w", err)
	}
	var values []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		values = append(values, line)
	}
	return values, nil
}
