package sign

import (
	"context"
	"fmt"
	"log/slog"
)

// Applies a cryptographic signature to a binary artifact.
//
// The production implementation shells out to codesign; tests substitute
// a fake.
type SigningBackend interface {
	Sign(ctx context.Context, path string, identity *Identity) error
}

// SigningBackend backed by the codesign tool.
type codesignTool struct {
	run runFunc
}

// Creates the codesign-backed signer.
func NewCodesignBackend() SigningBackend {
	return &codesignTool{run: runTool}
}

// Signs the binary with a hardened runtime designation and an embedded
// timestamp, scoped to the identity's keychain when one is active.
func (c *codesignTool) Sign(ctx context.Context, path string, identity *Identity) error {
	if identity == nil {
		return fmt.Errorf("%w: no signing identity available", ErrSigning)
	}

	args := []string{
		"--sign", identity.Fingerprint,
		"--timestamp",
		"--options", "runtime",
		"--force",
	}
	if identity.Keychain != "" {
		args = append(args, "--keychain", identity.Keychain)
	}
	args = append(args, path)

	if _, err := c.run(ctx, "codesign", args...); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSigning, path, err)
	}

	slog.Info("artifact signed", "path", path, "identity", identity.Name)
	return nil
}
