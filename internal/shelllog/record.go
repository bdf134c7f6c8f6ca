// Package shelllog reads and writes the JSONL log that shell hooks append
// failed commands to.
package shelllog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cmdfix/internal/command"
)

// ErrEmpty is returned by Last when the log has no records.
var ErrEmpty = errors.New("shell log is empty")

// maxLine bounds a single log line. Captured stderr can be long.
const maxLine = 2 * 1024 * 1024

// Record is one line in the shell log
type Record struct {
	Command  string    `json:"command"`
	ExitCode int       `json:"exit_code"`
	Stderr   string    `json:"stderr,omitempty"`
	Cwd      string    `json:"cwd,omitempty"`
	Shell    string    `json:"shell,omitempty"`
	Time     time.Time `json:"time"`
}

// Failed reports whether the logged command exited non-zero.
func (r Record) Failed() bool {
	return r.ExitCode != 0
}

// ToCommand converts the record to a command for the fixer. A record
// without a shell name uses fallback.
func (r Record) ToCommand(fallback command.Shell) command.Command {
	shell := fallback
	if r.Shell != "" {
		shell = command.ParseShell(r.Shell)
	}
	cmd := command.New(r.Command, shell)
	if r.Cwd != "" {
		cmd = cmd.WithCwd(r.Cwd)
	}
	if !r.Time.IsZero() {
		cmd = cmd.WithTimestamp(r.Time)
	}
	return cmd
}

// Append writes rec as a new line, creating the log and its directory if
// needed.
func Append(path string, rec Record) error {
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create shell log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open shell log: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write shell log: %w", err)
	}
	return f.Close()
}

// Last returns the most recent record in the log.
func Last(path string) (Record, error) {
	records, _, err := ReadFrom(path, 0)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrEmpty
	}
	return records[len(records)-1], nil
}

// ReadFrom reads complete records starting at a byte offset and returns
// them with the offset of the first unread byte. A trailing line without a
// newline is left for the next read. Malformed lines are skipped.
func ReadFrom(path string, offset int64) (records []Record, newOffset int64, err error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, offset, err
	}
	defer file.Close()

	if offset > 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			return nil, offset, err
		}
	}

	newOffset = offset
	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		line, err := reader.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			// partial line, still being written
			return records, newOffset, nil
		}
		if err != nil {
			return records, newOffset, err
		}
		newOffset += int64(len(line))

		if len(line) > maxLine {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.Command == "" {
			continue
		}
		records = append(records, rec)
	}
}
