package clix

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

const (
	defaultLimit   = 20
	maxLimit       = 500
	maxConcurrency = 64
)

type PaginationParams struct {
	Limit  int
	Offset int
}

func ParsePagination(flags *pflag.FlagSet) (PaginationParams, error) {
	limit, _ := flags.GetInt("limit")
	offset, _ := flags.GetInt("offset")
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return PaginationParams{Limit: limit, Offset: offset}, nil
}

// ParseConcurrency reads the "concurrency" flag, rejecting values outside 1..64.
func ParseConcurrency(flags *pflag.FlagSet) (int, error) {
	n, err := flags.GetInt("concurrency")
	if err != nil {
		return 0, err
	}
	if n < 1 || n > maxConcurrency {
		return 0, fmt.Errorf("--concurrency must be between 1 and %d, got %d", maxConcurrency, n)
	}
	return n, nil
}

// ReadLines returns the trimmed, non-empty lines of r.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return lines, nil
}
