// Package staging holds uploaded source documents while they await
// verification, then promotes confirmed files under their complaint id.
package staging

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ncrp-tools/complaints-tracker/constants"
	"github.com/ncrp-tools/complaints-tracker/internal/common"
)

const (
	pendingDir = "pending"
	indexFile  = "file_index.json"
)

var reUnsafeID = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Staging manages the upload directory: a pending/ subdirectory for staged
// files and the directory root for promoted ones. The file index maps
// complaint ids to their promoted filenames and survives restarts.
type Staging struct {
	root   string
	logger *slog.Logger

	mu    sync.Mutex
	index map[string]string
}

func New(root string, logger *slog.Logger) (*Staging, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Join(root, pendingDir), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	s := &Staging{root: root, logger: logger, index: make(map[string]string)}
	data, err := os.ReadFile(filepath.Join(root, indexFile))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s.index); err != nil {
			logger.Warn("file index unreadable, starting empty", "error", err)
			s.index = make(map[string]string)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read file index: %w", err)
	}
	return s, nil
}

// Stage writes an uploaded document into pending/ under a fresh name and
// returns that name. The original filename only contributes its extension.
func (s *Staging) Stage(originalName string, r io.Reader) (string, error) {
	ext := constants.NormalizeExt(filepath.Ext(originalName))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return "", common.NewAppError("UNSUPPORTED_TYPE",
			fmt.Sprintf("extension %q is not an accepted document type", ext),
			common.ErrInvalidInput)
	}

	name := uuid.NewString() + "." + ext
	f, err := os.Create(filepath.Join(s.root, pendingDir, name))
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return name, nil
}

// PendingPath returns the on-disk path of a staged file.
func (s *Staging) PendingPath(name string) string {
	return filepath.Join(s.root, pendingDir, filepath.Base(name))
}

// FilePath returns the on-disk path of a promoted file.
func (s *Staging) FilePath(name string) string {
	return filepath.Join(s.root, filepath.Base(name))
}

// Promote moves a staged file into the root under the complaint id, keeping
// the staged extension and suffixing _N rather than overwriting. The index
// records the newest promoted file for the id.
func (s *Staging) Promote(pendingName, complaintID string) (string, error) {
	src := s.PendingPath(pendingName)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", common.NewAppError("STAGED_FILE_MISSING",
				fmt.Sprintf("no staged file %q", pendingName), common.ErrNotFound)
		}
		return "", fmt.Errorf("stat staged file: %w", err)
	}

	safeID := reUnsafeID.ReplaceAllString(complaintID, "")
	if safeID == "" {
		safeID = "complaint"
	}
	final := resolveCollisionFreeName(s.root, safeID+strings.ToLower(filepath.Ext(pendingName)))
	if err := os.Rename(src, filepath.Join(s.root, final)); err != nil {
		return "", fmt.Errorf("promote staged file: %w", err)
	}

	s.mu.Lock()
	s.index[complaintID] = final
	err := s.writeIndexLocked()
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("file index write failed", "error", err)
	}

	s.logger.Info("upload promoted", "complaint_id", complaintID, "filename", final)
	return final, nil
}

// Discard removes a staged file that was rejected during verification.
func (s *Staging) Discard(pendingName string) error {
	err := os.Remove(s.PendingPath(pendingName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("discard staged file: %w", err)
	}
	return nil
}

// Lookup returns the promoted filename recorded for a complaint id.
func (s *Staging) Lookup(complaintID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.index[complaintID]
	return name, ok
}

func (s *Staging) writeIndexLocked() error {
	data, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.root, indexFile), data, 0o644)
}

// resolveCollisionFreeName appends _N before the extension until the name is
// unused in dir.
func resolveCollisionFreeName(dir, name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for n := 1; ; n++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
}
