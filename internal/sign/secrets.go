package sign

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shipforge/shipforge/internal/paths"
)

// Decodes a base64 blob into a transient file under dir.
//
// The file is created with owner-only permissions. Callers must remove it
// with RemoveSecret on every exit path, success or failure.
func WriteSecret(dir, name, blob string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(blob))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, paths.SecretFileMode); err != nil {
		return "", err
	}

	return path, nil
}

// Removes a transient secret file.
//
// Safe to call with an empty path or a path that no longer exists; failures
// beyond that are logged since there is nothing a caller can do about them.
func RemoveSecret(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove transient secret", "path", path, "error", err)
	}
}
