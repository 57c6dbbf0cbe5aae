package backup

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const manifestFileName = "manifest"

// manifestRecord is one tracked item inside a snapshot. Path is the original
// absolute location the item was copied from and will be restored to.
type manifestRecord struct {
	Kind  string // "file" or "dir"
	Path  string
	Size  int64
	MTime time.Time
}

const (
	kindFile = "file"
	kindDir  = "dir"
)

// writeManifest renders one pipe-delimited record per line.
func writeManifest(path string, records []manifestRecord) error {
	var buf bytes.Buffer
	for _, rec := range records {
		fmt.Fprintf(&buf, "%s|%s|%d|%s\n",
			rec.Kind, rec.Path, rec.Size, rec.MTime.UTC().Format(time.RFC3339))
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}

// readManifest parses a manifest file back into records. A malformed line is
// an error: the manifest is machine-written, so damage means the snapshot
// cannot be trusted.
func readManifest(path string) ([]manifestRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []manifestRecord
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, "|")
		if len(fields) != 4 {
			return nil, fmt.Errorf("manifest line %d: expected 4 fields, got %d", lineNo, len(fields))
		}
		if fields[0] != kindFile && fields[0] != kindDir {
			return nil, fmt.Errorf("manifest line %d: unknown kind %q", lineNo, fields[0])
		}

		size, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: bad size: %w", lineNo, err)
		}
		mtime, err := time.Parse(time.RFC3339, fields[3])
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: bad mtime: %w", lineNo, err)
		}

		records = append(records, manifestRecord{
			Kind:  fields[0],
			Path:  fields[1],
			Size:  size,
			MTime: mtime,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return records, nil
}
