package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const maxLineBytes = 1 << 20

// Filter keeps log lines mentioning every non-empty needle. Needles are
// matched as plain substrings, so both console and JSON lines qualify.
type Filter struct {
	FetchID string
	Token   string
	Text    string
}

func (f Filter) match(line string) bool {
	for _, needle := range []string{f.FetchID, f.Token, f.Text} {
		if needle != "" && !strings.Contains(line, needle) {
			return false
		}
	}
	return true
}

// Last returns up to limit matching lines from the end of the log together with
// the offset a follower should resume from. A missing file yields no lines.
func Last(path string, limit int, filter Filter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, end, nil
	}

	lines, offset, err := scan(file, 0, filter)
	if err != nil {
		return nil, 0, err
	}
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines, offset, nil
}

// Follow writes matching lines appended after offset to out until ctx ends.
// A truncated or rotated file is read again from the start.
func Follow(ctx context.Context, path string, offset int64, poll time.Duration, filter Filter, out io.Writer) error {
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, filter, out)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, filter Filter, out io.Writer) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < offset {
		offset = 0
	}
	lines, next, err := scan(file, offset, filter)
	if err != nil {
		return offset, err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return next, err
		}
	}
	return next, nil
}

// scan reads complete lines from offset. A trailing line without a newline is
// left for the next read so followers never print half-written entries.
func scan(file *os.File, offset int64, filter Filter) ([]string, int64, error) {
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}
	reader := bufio.NewReaderSize(file, 64*1024)
	var lines []string
	for {
		raw, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, offset, nil
			}
			return nil, offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(raw))
		line := strings.TrimRight(raw, "\r\n")
		if len(line) > maxLineBytes {
			line = line[:maxLineBytes]
		}
		if filter.match(line) {
			lines = append(lines, line)
		}
	}
}
