// ShopSense - Small Business Sales and Customer Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopsense

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FormatVersion is the artifact format written by this build.
const FormatVersion = 1

// Artifact names.
const (
	ArtifactScaler = "scaler"
	ArtifactKMeans = "kmeans"
)

var (
	// ErrNotFound is returned when an artifact file does not exist.
	ErrNotFound = errors.New("artifact not found")

	// ErrFormatVersion is returned when an artifact was written by an
	// incompatible format version.
	ErrFormatVersion = errors.New("unsupported artifact format version")

	// ErrChecksum is returned when the artifact payload does not match its checksum.
	ErrChecksum = errors.New("artifact checksum mismatch")
)

// ArtifactMetadata contains information about a stored artifact.
type ArtifactMetadata struct {
	// Name is the artifact name ("scaler" or "kmeans").
	Name string `json:"name"`

	// FormatVersion is the on-disk format version.
	FormatVersion int `json:"format_version"`

	// TrainingID identifies the training run. Both artifacts of one run
	// share it; a mismatch means the pair is inconsistent.
	TrainingID string `json:"training_id"`

	// TrainedAt is when training finished.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the artifact was written.
	SavedAt time.Time `json:"saved_at"`

	// CohortSize is the number of clients used for training.
	CohortSize int `json:"cohort_size"`

	// Checksum is the SHA-256 checksum of the uncompressed state.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed state size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// Store manages artifact persistence in one directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates a store rooted at baseDir, creating it if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create model directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// OpenStore returns a store for an existing directory without creating it.
// Loading from a missing directory yields ErrNotFound.
func OpenStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// storedFile is the on-disk envelope.
type storedFile struct {
	Metadata       ArtifactMetadata
	CompressedData []byte
}

// Artifact is one named state written by SaveSet.
type Artifact struct {
	Name string
	Data interface{}
}

// Save encodes data and atomically replaces the named artifact. Name,
// FormatVersion, Checksum, SizeBytes and SavedAt in meta are filled in.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, data interface{}, meta ArtifactMetadata) error {
	return s.SaveSet(ctx, meta, Artifact{Name: name, Data: data})
}

// SaveSet writes artifacts that must be replaced together, all sharing meta.
// Every artifact is encoded and synced to a temporary file first; the files
// are renamed into place only after all of them were written. A failure
// before that point leaves the previous artifacts untouched.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) SaveSet(ctx context.Context, meta ArtifactMetadata, artifacts ...Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make([]string, 0, len(artifacts))
	committed := 0
	defer func() {
		for _, tmpName := range staged[committed:] {
			_ = os.Remove(tmpName)
		}
	}()

	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}
		tmpName, err := s.stage(a, meta)
		if err != nil {
			return err
		}
		staged = append(staged, tmpName)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	for i, a := range artifacts {
		if err := os.Rename(staged[i], s.Path(a.Name)); err != nil {
			return fmt.Errorf("replace %s: %w", a.Name, err)
		}
		committed++
	}
	return nil
}

// stage writes the envelope of a to a synced temporary file in the store
// directory and returns its path.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) stage(a Artifact, meta ArtifactMetadata) (string, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(a.Data); err != nil {
		return "", fmt.Errorf("encode %s: %w", a.Name, err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return "", fmt.Errorf("compress %s: %w", a.Name, err)
	}
	if err := gzw.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	meta.Name = a.Name
	meta.FormatVersion = FormatVersion
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now().UTC()

	tmp, err := os.CreateTemp(s.baseDir, a.Name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	sf := storedFile{Metadata: meta, CompressedData: compressed.Bytes()}
	err = gob.NewEncoder(tmp).Encode(sf)
	if err != nil {
		err = fmt.Errorf("write %s: %w", a.Name, err)
	} else if err = tmp.Sync(); err != nil {
		err = fmt.Errorf("sync %s: %w", a.Name, err)
	}
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close %s: %w", a.Name, closeErr)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	return tmpName, nil
}

// Load reads the named artifact into target, verifying format version and
// checksum.
func (s *Store) Load(ctx context.Context, name string, target interface{}) (*ArtifactMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sf, err := s.readEnvelope(name)
	if err != nil {
		return nil, err
	}

	if sf.Metadata.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: %s has version %d, want %d",
			ErrFormatVersion, name, sf.Metadata.FormatVersion, FormatVersion)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", name, err)
	}
	defer func() { _ = gzr.Close() }()

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed %s: %w", name, err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("%w: %s expected %s, got %s", ErrChecksum, name, sf.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	return &sf.Metadata, nil
}

// Stat returns the metadata of the named artifact without decoding its state.
func (s *Store) Stat(ctx context.Context, name string) (*ArtifactMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sf, err := s.readEnvelope(name)
	if err != nil {
		return nil, err
	}
	return &sf.Metadata, nil
}

// Path returns the file path for an artifact.
func (s *Store) Path(name string) string {
	return filepath.Join(s.baseDir, name+".gob.gz")
}

func (s *Store) readEnvelope(name string) (*storedFile, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path(name))
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &sf, nil
}

// ScalerState is the serializable state of a fitted standard scaler.
type ScalerState struct {
	Mean  []float64
	Scale []float64
}

// KMeansState is the serializable state of a fitted k-means model with the
// segment label of each cluster.
type KMeansState struct {
	Centroids  [][]float64
	Inertia    float64
	Iterations int
	Seed       uint64
	Labels     []LabelState
}

// LabelState names a cluster.
type LabelState struct {
	Cluster int
	Name    string
	Color   string
}
