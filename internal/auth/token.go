// Package auth keeps the session token on disk between runs.
package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const tokenFileName = "token"

// FileTokenSource reads and writes the bearer token under the data
// directory. A missing file means "not signed in", never an error, so
// it satisfies the client's TokenSource contract directly.
type FileTokenSource struct {
	dir string
}

// NewFileTokenSource creates a token source rooted at dataDir.
func NewFileTokenSource(dataDir string) *FileTokenSource {
	return &FileTokenSource{dir: dataDir}
}

func (f *FileTokenSource) path() string {
	return filepath.Join(f.dir, tokenFileName)
}

// Token returns the stored token, or "" when none is stored.
func (f *FileTokenSource) Token() (string, error) {
	data, err := os.ReadFile(f.path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save stores the token. The file is readable by the owner only since
// it is a live credential.
func (f *FileTokenSource) Save(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("refusing to store an empty token")
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(f.path(), []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an absent token is fine.
func (f *FileTokenSource) Clear() error {
	if err := os.Remove(f.path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}
