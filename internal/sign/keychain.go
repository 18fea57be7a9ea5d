package sign

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// Auto-lock timeout for the isolated keychain. Long enough to cover a slow
// notarization round-trip.
const keychainLockTimeout = 6 * time.Hour

// Operations against the OS credential store.
//
// The production implementation shells out to the security tool; tests
// substitute an in-memory fake so keychain orchestration can be verified
// without touching real OS state.
type CredentialStore interface {
	Create(ctx context.Context, path, password string) error
	SetSettings(ctx context.Context, path string, lockTimeout time.Duration) error
	Unlock(ctx context.Context, path, password string) error
	SearchList(ctx context.Context) ([]string, error)
	SetSearchList(ctx context.Context, paths []string) error
	SetDefault(ctx context.Context, path string) error
	ImportCertificate(ctx context.Context, keychain, certPath, password string) error
	SetPartitionList(ctx context.Context, keychain, password string) error
	FindIdentities(ctx context.Context, keychain string) ([]Identity, error)
	Delete(ctx context.Context, path string) error
}

// A signing identity resolved from the isolated keychain.
type Identity struct {
	Fingerprint string // SHA-1 fingerprint passed to the signing tool.
	Name        string // Human-readable certificate name.
	Keychain    string // Path of the keychain holding the identity.
}

// Inputs for keychain setup.
type Config struct {
	Certificate string // Base64-encoded signing certificate (.p12).
	Password    string // Password unlocking the certificate.
	Scratch     string // Directory for the transient certificate file.
	Store       CredentialStore
}

// An isolated keychain holding the run's single signing identity.
//
// The keychain is created by Setup and must be destroyed by Teardown on
// every termination path. The global keychain search list is mutated during
// setup and restored exactly on teardown.
type Keychain struct {
	store    CredentialStore
	path     string
	password string
	identity *Identity

	searchSaved bool     // Whether the pre-setup search list was captured.
	searchList  []string // Search list entries as they were before setup.

	teardown sync.Once
}

// Creates an isolated keychain, imports the signing certificate, and
// resolves exactly one signing identity.
//
// Returns ErrUnavailable without touching the credential store when the
// certificate or its password is missing; signing is simply disabled for
// the run. Any failure after the keychain exists triggers a full teardown
// before the error is returned, so no partial state survives. The transient
// certificate file is removed on every path.
func Setup(ctx context.Context, cfg Config) (*Keychain, error) {
	if cfg.Certificate == "" || cfg.Password == "" {
		return nil, ErrUnavailable
	}

	certPath, err := WriteSecret(cfg.Scratch, "signing-cert.p12", cfg.Certificate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentialStore, err)
	}
	defer RemoveSecret(certPath)

	kc := &Keychain{
		store:    cfg.Store,
		path:     filepath.Join(cfg.Scratch, "shipforge-"+randomSuffix()+".keychain-db"),
		password: randomSuffix(),
	}

	if err := kc.establish(ctx, certPath, cfg.Password); err != nil {
		kc.Teardown(ctx)
		return nil, err
	}

	slog.Info("signing identity ready",
		"identity", kc.identity.Name,
		"fingerprint", kc.identity.Fingerprint,
		"keychain", kc.path,
	)

	return kc, nil
}

// Runs the setup protocol against the credential store.
//
// The search list is captured before the first mutation so teardown can
// restore it even when a later step fails.
func (kc *Keychain) establish(ctx context.Context, certPath, certPassword string) error {
	if err := kc.store.Create(ctx, kc.path, kc.password); err != nil {
		return fmt.Errorf("%w: create keychain: %w", ErrCredentialStore, err)
	}
	if err := kc.store.SetSettings(ctx, kc.path, keychainLockTimeout); err != nil {
		return fmt.Errorf("%w: keychain settings: %w", ErrCredentialStore, err)
	}
	if err := kc.store.Unlock(ctx, kc.path, kc.password); err != nil {
		return fmt.Errorf("%w: unlock keychain: %w", ErrCredentialStore, err)
	}

	current, err := kc.store.SearchList(ctx)
	if err != nil {
		return fmt.Errorf("%w: read search list: %w", ErrCredentialStore, err)
	}
	kc.searchList = slices.Clone(current)
	kc.searchSaved = true

	if err := kc.store.SetSearchList(ctx, append(current, kc.path)); err != nil {
		return fmt.Errorf("%w: extend search list: %w", ErrCredentialStore, err)
	}
	if err := kc.store.SetDefault(ctx, kc.path); err != nil {
		return fmt.Errorf("%w: set default keychain: %w", ErrCredentialStore, err)
	}

	if err := kc.store.ImportCertificate(ctx, kc.path, certPath, certPassword); err != nil {
		return fmt.Errorf("%w: import certificate: %w", ErrCredentialStore, err)
	}
	if err := kc.store.SetPartitionList(ctx, kc.path, kc.password); err != nil {
		return fmt.Errorf("%w: key partition access: %w", ErrCredentialStore, err)
	}

	identities, err := kc.store.FindIdentities(ctx, kc.path)
	if err != nil {
		return fmt.Errorf("%w: list identities: %w", ErrCredentialStore, err)
	}

	switch len(identities) {
	case 0:
		return ErrNoIdentity
	case 1:
		id := identities[0]
		id.Keychain = kc.path
		kc.identity = &id
		return nil
	default:
		names := make([]string, len(identities))
		for i, id := range identities {
			names[i] = id.Name
		}
		return fmt.Errorf("%w: %v", ErrAmbiguousIdentity, names)
	}
}

// Returns the resolved signing identity, or nil when setup did not complete.
func (kc *Keychain) Identity() *Identity {
	if kc == nil {
		return nil
	}
	return kc.identity
}

// Destroys the isolated keychain and restores the global search list.
//
// Idempotent and safe to call on every termination path: repeated calls are
// no-ops, and every step is attempted even when an earlier one fails.
// Exactly the one entry this keychain added is removed from the search
// list; all pre-existing entries survive in their original order. The
// default keychain is reset to the first remaining entry, if any.
func (kc *Keychain) Teardown(ctx context.Context) {
	if kc == nil {
		return
	}

	kc.teardown.Do(func() {
		kc.identity = nil

		if kc.searchSaved {
			remaining := kc.restoredSearchList(ctx)
			if err := kc.store.SetSearchList(ctx, remaining); err != nil {
				slog.Warn("failed to restore keychain search list", "error", err)
			}
			if len(remaining) > 0 {
				if err := kc.store.SetDefault(ctx, remaining[0]); err != nil {
					slog.Warn("failed to reset default keychain", "error", err)
				}
			}
		}

		if err := kc.store.Delete(ctx, kc.path); err != nil {
			slog.Warn("failed to delete keychain", "keychain", kc.path, "error", err)
		} else {
			slog.Debug("keychain removed", "keychain", kc.path)
		}
	})
}

// Computes the search list teardown should install.
//
// Prefers the live list with this keychain's entry filtered out, so entries
// added by other processes during the run survive. Falls back to the list
// captured at setup when the live list cannot be read.
func (kc *Keychain) restoredSearchList(ctx context.Context) []string {
	current, err := kc.store.SearchList(ctx)
	if err != nil {
		return kc.searchList
	}

	remaining := make([]string, 0, len(current))
	for _, entry := range current {
		if entry != kc.path {
			remaining = append(remaining, entry)
		}
	}
	return remaining
}

// Returns a short random hex string for keychain names and passwords.
func randomSuffix() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
