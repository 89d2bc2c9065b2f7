// Package trace records and replays cache operation sequences.
//
// A trace is line oriented: "GET,<key>" or "SET,<key>,<value>". Blank lines
// and lines starting with '#' are ignored.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tstromberg/cachesim/internal/workload"
)

// ErrMalformed is wrapped by errors for lines that cannot be parsed.
var ErrMalformed = errors.New("malformed trace line")

// Write writes ops to w, one per line.
func Write(w io.Writer, ops []workload.Op) error {
	bw := bufio.NewWriter(w)
	for _, op := range ops {
		if _, err := bw.WriteString(op.String()); err != nil {
			return fmt.Errorf("write trace: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write trace: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}

// Read parses a plain trace.
func Read(r io.Reader) ([]workload.Op, error) {
	scanner := bufio.NewScanner(r)
	var ops []workload.Op
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		op, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan trace: %w", err)
	}
	return ops, nil
}

func parseLine(line string) (workload.Op, error) {
	parts := strings.Split(line, ",")
	switch {
	case parts[0] == "GET" && len(parts) == 2:
		key, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return workload.Op{}, fmt.Errorf("%w: key %q", ErrMalformed, parts[1])
		}
		return workload.ReadOp(key), nil
	case parts[0] == "SET" && len(parts) == 3:
		key, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return workload.Op{}, fmt.Errorf("%w: key %q", ErrMalformed, parts[1])
		}
		value, err := strconv.ParseUint(parts[2], 10, 64)
		if err != nil {
			return workload.Op{}, fmt.Errorf("%w: value %q", ErrMalformed, parts[2])
		}
		return workload.WriteOp(key, value), nil
	default:
		return workload.Op{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
}

// Summary describes ops in one line, for logs and report headers.
func Summary(ops []workload.Op) string {
	unique := make(map[uint64]struct{}, len(ops))
	for _, op := range ops {
		unique[op.Key] = struct{}{}
	}
	return fmt.Sprintf("%d ops (%d reads, %d unique keys)", len(ops), workload.CountReads(ops), len(unique))
}
