package lexicon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"go.uber.org/zap"
)

// #region document
// Document is the on-disk form of the learned vocabulary. Seed words are never
// written; they are rebuilt from configuration on every start.
type Document struct {
	Version      string                        `json:"version" jsonschema:"required,description=schema version tag"`
	Words        map[string]map[string]float64 `json:"words" jsonschema:"required,description=normalized word mapped to axis weights in the unit interval"`
	TotalLearned int                           `json:"total_learned" jsonschema:"required,minimum=0"`
}

// rawDocument detects missing keys, which encoding/json would otherwise zero-fill.
type rawDocument struct {
	Version      *string                        `json:"version"`
	Words        *map[string]map[string]float64 `json:"words"`
	TotalLearned *int                           `json:"total_learned"`
}

// DocumentSchema returns the JSON Schema of the saved document.
func DocumentSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(&Document{})
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return b, nil
}

// #endregion document

// #region snapshot
// Snapshot returns the document Save would write.
func (l *Lexicon) Snapshot() Document {
	doc := Document{
		Version:      l.cfg.SchemaVersion,
		Words:        make(map[string]map[string]float64),
		TotalLearned: l.totalLearned,
	}
	for w, entry := range l.words {
		if _, isSeed := l.seed[w]; isSeed {
			continue
		}
		doc.Words[w] = map[string]float64(entry.clone())
	}
	return doc
}

// #endregion snapshot

// #region save
// Save overwrites the configured file with the learned vocabulary. Failures are
// logged and returned in the result; the in-memory table is never affected.
func (l *Lexicon) Save() SaveResult {
	res := SaveResult{Path: l.cfg.Path}
	if l.cfg.Path == "" {
		res.Err = ErrNoPath
		return res
	}
	doc := l.Snapshot()
	res.Words = len(doc.Words)

	if err := writeDocument(l.cfg.Path, doc); err != nil {
		res.Err = err
		l.logger.Warn("lexicon save failed", zap.String("path", l.cfg.Path), zap.Error(err))
		return res
	}
	l.logger.Debug("lexicon saved", zap.String("path", l.cfg.Path), zap.Int("words", res.Words))
	return res
}

// writeDocument writes to a temp file in the target directory and renames it
// over the destination.
func writeDocument(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal lexicon: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// #endregion save

// #region load
// Load merges the configured file into the table. For each stored word/axis the
// loaded weight replaces the in-memory one; other axes are untouched. A missing
// file is not an error. A malformed or unreadable file is reported and skipped
// without merging anything.
func (l *Lexicon) Load() LoadResult {
	res := LoadResult{Path: l.cfg.Path}
	if l.cfg.Path == "" {
		res.Status = LoadMissing
		res.Reason = ErrNoPath.Error()
		return res
	}

	data, err := os.ReadFile(l.cfg.Path)
	if errors.Is(err, fs.ErrNotExist) {
		res.Status = LoadMissing
		res.Reason = "no lexicon file"
		return res
	}
	if err != nil {
		res.Status = LoadUnreadable
		res.Reason = err.Error()
		l.logger.Warn("lexicon load skipped", zap.String("path", l.cfg.Path), zap.Error(err))
		return res
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return l.malformed(res, fmt.Sprintf("decode: %v", err))
	}
	if raw.Version == nil || raw.Words == nil || raw.TotalLearned == nil {
		return l.malformed(res, "missing version, words or total_learned")
	}
	if *raw.TotalLearned < 0 {
		return l.malformed(res, "negative total_learned")
	}

	for word, axes := range *raw.Words {
		w := Normalize(word)
		if w == "" {
			continue
		}
		entry, existed := l.words[w]
		if !existed {
			entry = make(Weights)
		}
		for axis, v := range axes {
			if l.HasAxis(axis) && v > 0 {
				entry.set(axis, v)
			}
		}
		if len(entry) == 0 {
			continue
		}
		if !existed {
			l.words[w] = entry
		}
		res.Words++
	}
	l.totalLearned = *raw.TotalLearned
	res.Status = LoadOK
	l.logger.Debug("lexicon loaded",
		zap.String("path", l.cfg.Path),
		zap.String("version", *raw.Version),
		zap.Int("words", res.Words))
	return res
}

func (l *Lexicon) malformed(res LoadResult, reason string) LoadResult {
	res.Status = LoadMalformed
	res.Reason = reason
	l.logger.Warn("lexicon file malformed, using seed vocabulary",
		zap.String("path", l.cfg.Path), zap.String("reason", reason))
	return res
}

// #endregion load
