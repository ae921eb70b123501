// Package embfile persists precomputed embedding matrices as binary cache
// files. The format is a fixed header (magic, schema version, model name,
// counts, creation time), the recipe identifiers in corpus order, then
// the little-endian float32 rows. Any read failure — missing file,
// truncation, bad magic — is recovered locally and reported as a load
// miss, never an error: the caller falls back to a full fit.
package embfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/domain"
)

var magic = [4]byte{'F', 'C', 'E', 'C'}

// maxDim and maxCount bound the header-declared dimensions so a corrupt
// header cannot drive an absurd allocation.
const (
	maxDim   = 1 << 16
	maxCount = 1 << 24
)

// Store reads and writes embedding cache files under one directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// New creates a cache store, creating the directory if needed.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Path returns the file path for a cache name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".emb")
}

// Exists reports whether a cache file is present.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	if err != nil {
		s.logger.Warn("Cache file not found", zap.String("name", name))
		return false
	}
	s.logger.Info("Cache file found",
		zap.String("name", name),
		zap.Int64("size_bytes", info.Size()),
	)
	return true
}

// Load reads a cache payload. Returns (nil, false) on any failure.
func (s *Store) Load(name string) (*domain.EmbeddingCache, bool) {
	path := s.Path(name)

	f, err := os.Open(path)
	if err != nil {
		s.logger.Warn("Cannot open cache file", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	defer f.Close()

	cache, err := decode(bufio.NewReader(f))
	if err != nil {
		s.logger.Error("Corrupt cache file", zap.String("path", path), zap.Error(err))
		return nil, false
	}

	s.logger.Info("Cache loaded",
		zap.String("path", path),
		zap.String("model", cache.Model),
		zap.Int("recipes", cache.NRecipes()),
	)
	return cache, true
}

// Save writes a cache payload. Returns false on failure. The write goes
// through a temp file and rename so a crash never leaves a truncated
// cache in place.
func (s *Store) Save(name string, cache *domain.EmbeddingCache) bool {
	path := s.Path(name)

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		s.logger.Error("Cannot create cache temp file", zap.String("dir", s.dir), zap.Error(err))
		return false
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	encodeErr := encode(w, cache)
	if encodeErr == nil {
		encodeErr = w.Flush()
	}
	closeErr := tmp.Close()

	if encodeErr != nil || closeErr != nil {
		s.logger.Error("Failed to write cache",
			zap.String("path", tmpPath),
			zap.NamedError("encode", encodeErr),
			zap.NamedError("close", closeErr),
		)
		os.Remove(tmpPath)
		return false
	}

	if err := os.Rename(tmpPath, path); err != nil {
		s.logger.Error("Failed to move cache into place", zap.String("path", path), zap.Error(err))
		os.Remove(tmpPath)
		return false
	}

	info, err := os.Stat(path)
	if err == nil {
		s.logger.Info("Cache saved",
			zap.String("path", path),
			zap.Int64("size_bytes", info.Size()),
		)
	}
	return true
}

// Delete removes a cache file. Returns false if absent or undeletable.
func (s *Store) Delete(name string) bool {
	path := s.Path(name)
	if err := os.Remove(path); err != nil {
		s.logger.Warn("Cannot delete cache file", zap.String("path", path), zap.Error(err))
		return false
	}
	s.logger.Info("Cache deleted", zap.String("path", path))
	return true
}

func encode(w io.Writer, cache *domain.EmbeddingCache) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}

	dim := 0
	if len(cache.Embeddings) > 0 {
		dim = len(cache.Embeddings[0])
	}

	header := []uint64{
		uint64(cache.SchemaVersion),
		uint64(len(cache.Model)),
		uint64(len(cache.RecipeIDs)),
		uint64(dim),
		uint64(cache.CreatedAt.Unix()),
	}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, cache.Model); err != nil {
		return err
	}

	for _, id := range cache.RecipeIDs {
		if err := binary.Write(w, binary.LittleEndian, int64(id)); err != nil {
			return err
		}
	}

	buf := make([]byte, 4)
	for i, row := range cache.Embeddings {
		if len(row) != dim {
			return fmt.Errorf("row %d has dim %d, want %d", i, len(row), dim)
		}
		for _, v := range row {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	}
	return nil
}

func decode(r io.Reader) (*domain.EmbeddingCache, error) {
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if m != magic {
		return nil, fmt.Errorf("bad magic %q", m)
	}

	var schemaVersion, modelLen, count, dim, createdAt uint64
	for _, dst := range []*uint64{&schemaVersion, &modelLen, &count, &dim, &createdAt} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
	}
	if modelLen > 1024 || count > maxCount || dim > maxDim {
		return nil, fmt.Errorf("implausible header: model_len=%d count=%d dim=%d", modelLen, count, dim)
	}

	model := make([]byte, modelLen)
	if _, err := io.ReadFull(r, model); err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	ids := make([]int, count)
	for i := range ids {
		var id int64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, fmt.Errorf("read ids: %w", err)
		}
		ids[i] = int(id)
	}

	rows := make([][]float32, count)
	buf := make([]byte, 4)
	for i := range rows {
		row := make([]float32, dim)
		for j := range row {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("read embeddings: %w", err)
			}
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf))
		}
		rows[i] = row
	}

	return &domain.EmbeddingCache{
		SchemaVersion: int(schemaVersion),
		Model:         string(model),
		RecipeIDs:     ids,
		Embeddings:    rows,
		CreatedAt:     time.Unix(int64(createdAt), 0).UTC(),
	}, nil
}
