package fetch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/poiesic/grantlens/core"
)

// WriteRecords writes grant records as JSON lines, one record per line.
// JSONL keeps fetched batches inspectable with standard tools and lets
// the analyze step stream them back in.
func WriteRecords(w io.Writer, records []*core.GrantRecord) error {
	enc := json.NewEncoder(w)
	for i, record := range records {
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	return nil
}

// ReadRecords reads grant records from a JSON-lines stream.
// Blank lines are skipped.
func ReadRecords(r io.Reader) ([]*core.GrantRecord, error) {
	var records []*core.GrantRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		record := &core.GrantRecord{}
		if err := json.Unmarshal(raw, record); err != nil {
			return nil, fmt.Errorf("parsing record at line %d: %w", line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
