package engine

import (
	"bufio"
	"os"
	"strings"

	"github.com/rohmanhakim/docs-crawler/pkg/urlutil"
)

// LoadSeeds reads path, one URL per line, normalizing each and dropping
// blank lines, per §6.3. An empty file yields a nil slice and a nil error;
// the caller decides whether zero seeds is fatal. A file that cannot be
// opened yields an EngineError with ErrCauseSeedFileOpen.
func LoadSeeds(path string) ([]string, *EngineError) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &EngineError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseSeedFileOpen,
		}
	}
	defer f.Close()

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		seeds = append(seeds, urlutil.Normalize(line))
	}
	return seeds, nil
}
