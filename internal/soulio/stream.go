// Package soulio is the append-only JSON-lines memory stream. Each line is one
// JSON object tagged with a "_type" discriminator. It is independent of the
// lexicon document format.
package soulio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// TypeKey is the discriminator field present on every record.
const TypeKey = "_type"

const maxLineBytes = 4 * 1024 * 1024

var (
	ErrEmptyType = errors.New("record type is empty")
	ErrNotObject = errors.New("record is not a JSON object")
)

// #region record
// Record is one decoded line of the stream.
type Record struct {
	Type string
	Line int // 1-based line number in the file
	Raw  json.RawMessage
}

// Decode unmarshals the full line, discriminator included, into v.
func (r Record) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("decode %s record at line %d: %w", r.Type, r.Line, err)
	}
	return nil
}

// LoadResult is returned by Load.
type LoadResult struct {
	Records []Record
	Skipped int // malformed or untyped lines
}

// #endregion record

// #region stream
// Stream appends to and reads a JSONL file. Not safe for concurrent use.
type Stream struct {
	path   string
	logger *zap.Logger
}

// Open returns a stream bound to path. The file is created on first Append.
func Open(path string, logger *zap.Logger) *Stream {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stream{path: path, logger: logger}
}

// Path returns the stream file path.
func (s *Stream) Path() string { return s.path }

// BackupPath returns where Append keeps the previous version of the file.
func (s *Stream) BackupPath() string { return s.path + ".bak" }

// #endregion stream

// #region append
// Append writes v as one line tagged with recordType. v must marshal to a JSON
// object; an existing "_type" field is overwritten. The current file is copied
// to BackupPath first.
func (s *Stream) Append(recordType string, v interface{}) error {
	if strings.TrimSpace(recordType) == "" {
		return ErrEmptyType
	}
	line, err := encodeLine(recordType, v)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := s.backup(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("append record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close stream: %w", err)
	}
	return nil
}

func encodeLine(recordType string, v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, ErrNotObject
	}
	tag, err := json.Marshal(recordType)
	if err != nil {
		return nil, fmt.Errorf("marshal type: %w", err)
	}
	fields[TypeKey] = tag
	line, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return line, nil
}

// backup copies the stream to BackupPath through a temp file and rename.
func (s *Stream) backup() error {
	src, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open for backup: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.BackupPath())+".tmp-*")
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("copy backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close backup: %w", err)
	}
	if err := os.Rename(tmpName, s.BackupPath()); err != nil {
		return fmt.Errorf("rename backup: %w", err)
	}
	return nil
}

// #endregion append

// #region load
// Load reads every record. A missing file yields an empty result. Lines that
// are not JSON objects with a string "_type" are skipped and counted.
func (s *Stream) Load() (LoadResult, error) {
	var res LoadResult
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("open stream: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		rec, ok := parseLine(raw, lineNo)
		if !ok {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scan stream: %w", err)
	}
	if res.Skipped > 0 {
		s.logger.Warn("skipped malformed stream lines",
			zap.String("path", s.path), zap.Int("skipped", res.Skipped))
	}
	return res, nil
}

// LoadTyped returns only the records of the given type.
func (s *Stream) LoadTyped(recordType string) ([]Record, error) {
	res, err := s.Load()
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range res.Records {
		if r.Type == recordType {
			out = append(out, r)
		}
	}
	return out, nil
}

func parseLine(raw string, lineNo int) (Record, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil || fields == nil {
		return Record{}, false
	}
	var typ string
	if err := json.Unmarshal(fields[TypeKey], &typ); err != nil || typ == "" {
		return Record{}, false
	}
	return Record{Type: typ, Line: lineNo, Raw: json.RawMessage(raw)}, true
}

// #endregion load
