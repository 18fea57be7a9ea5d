package sign

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// Runs an external tool and returns its combined output.
type runFunc func(ctx context.Context, name string, args ...string) (string, error)

// CredentialStore backed by the macOS security tool.
type securityTool struct {
	run runFunc
}

// Creates the security-backed credential store.
func NewSecurityStore() CredentialStore {
	return &securityTool{run: runTool}
}

func (s *securityTool) Create(ctx context.Context, path, password string) error {
	_, err := s.run(ctx, "security", "create-keychain", "-p", password, path)
	return err
}

func (s *securityTool) SetSettings(ctx context.Context, path string, lockTimeout time.Duration) error {
	seconds := fmt.Sprintf("%d", int(lockTimeout.Seconds()))
	_, err := s.run(ctx, "security", "set-keychain-settings", "-lut", seconds, path)
	return err
}

func (s *securityTool) Unlock(ctx context.Context, path, password string) error {
	_, err := s.run(ctx, "security", "unlock-keychain", "-p", password, path)
	return err
}

func (s *securityTool) SearchList(ctx context.Context) ([]string, error) {
	out, err := s.run(ctx, "security", "list-keychains", "-d", "user")
	if err != nil {
		return nil, err
	}
	return parseSearchList(out), nil
}

func (s *securityTool) SetSearchList(ctx context.Context, paths []string) error {
	args := append([]string{"list-keychains", "-d", "user", "-s"}, paths...)
	_, err := s.run(ctx, "security", args...)
	return err
}

func (s *securityTool) SetDefault(ctx context.Context, path string) error {
	_, err := s.run(ctx, "security", "default-keychain", "-s", path)
	return err
}

// Imports a certificate authorized for use by the signing and
// identity-listing tools, so signing does not prompt interactively.
func (s *securityTool) ImportCertificate(ctx context.Context, keychain, certPath, password string) error {
	_, err := s.run(ctx, "security", "import", certPath,
		"-k", keychain,
		"-P", password,
		"-T", "/usr/bin/codesign",
		"-T", "/usr/bin/security",
	)
	return err
}

func (s *securityTool) SetPartitionList(ctx context.Context, keychain, password string) error {
	_, err := s.run(ctx, "security", "set-key-partition-list",
		"-S", "apple-tool:,apple:",
		"-s",
		"-k", password,
		keychain,
	)
	return err
}

func (s *securityTool) FindIdentities(ctx context.Context, keychain string) ([]Identity, error) {
	out, err := s.run(ctx, "security", "find-identity", "-v", "-p", "codesigning", keychain)
	if err != nil {
		return nil, err
	}
	return parseIdentities(out), nil
}

func (s *securityTool) Delete(ctx context.Context, path string) error {
	_, err := s.run(ctx, "security", "delete-keychain", path)
	return err
}

// Extracts keychain paths from list-keychains output.
//
// Each line is an indented, double-quoted path.
func parseSearchList(out string) []string {
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		entry := strings.Trim(strings.TrimSpace(line), `"`)
		if entry != "" {
			paths = append(paths, entry)
		}
	}
	return paths
}

// Matches valid identity lines from find-identity output, e.g.
//
//	1) A1B2C3... "Developer ID Application: Example Corp (TEAMID)"
var identityLine = regexp.MustCompile(`^\s*\d+\)\s+([0-9A-F]{40})\s+"(.+)"$`)

// Extracts identities from find-identity output, ignoring the trailing
// summary line and anything that is not a numbered identity entry.
func parseIdentities(out string) []Identity {
	var identities []Identity
	for _, line := range strings.Split(out, "\n") {
		m := identityLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		identities = append(identities, Identity{Fingerprint: m[1], Name: m[2]})
	}
	return identities
}

// Default tool execution: capture combined output and fold it into the
// error on non-zero exit.
func runTool(ctx context.Context, name string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("%s: %w (%s)", name, err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}
