package sign

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// Terminal outcome of a notarization attempt.
type Status int

const (
	// Notarization was not attempted; credentials are absent. A signed but
	// unstapled binary is a valid terminal state.
	StatusSkipped Status = iota

	// The attestation service accepted the submission and the ticket was
	// stapled onto the artifact.
	StatusAccepted

	// The service returned a non-accepted verdict; the artifact remains
	// unstapled.
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// A submission record returned by the attestation service.
type Submission struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Verdict string the service returns on acceptance.
const verdictAccepted = "Accepted"

// Submits archives to the attestation service and staples tickets.
//
// The production implementation shells out to notarytool and stapler;
// tests substitute a fake.
type NotarizationBackend interface {
	Submit(ctx context.Context, archivePath, keyPath, keyID, issuer string) (Submission, error)
	Staple(ctx context.Context, path string) error
}

// App Store Connect API credentials for notarization.
type Credentials struct {
	Key    string // Base64-encoded signing key (.p8).
	KeyID  string
	Issuer string
}

// Returns true when every credential needed for notarization is present.
func (c Credentials) Complete() bool {
	return c.Key != "" && c.KeyID != "" && c.Issuer != ""
}

// Submits signed artifacts for notarization and staples accepted tickets.
type Notarizer struct {
	backend NotarizationBackend
	creds   Credentials
	scratch string
}

// Creates a notarizer staging transient files under scratch.
func NewNotarizer(backend NotarizationBackend, creds Credentials, scratch string) *Notarizer {
	return &Notarizer{backend: backend, creds: creds, scratch: scratch}
}

// Notarizes a signed artifact and staples the ticket onto it.
//
// Returns StatusSkipped without creating any transient file when the
// credentials are incomplete. Otherwise the signing key is decoded to a
// transient file, the artifact is zipped preserving its enclosing directory
// name (the service needs it to recognize single-file submissions), and the
// submission blocks until the service returns a terminal verdict. Any
// verdict other than accepted is reported with the submission id and status
// and leaves the artifact unstapled. The transient key and archive are
// removed on every exit path.
func (n *Notarizer) Notarize(ctx context.Context, artifactPath, displayName string) (Status, error) {
	if !n.creds.Complete() {
		return StatusSkipped, nil
	}

	keyPath, err := WriteSecret(n.scratch, "AuthKey_"+n.creds.KeyID+".p8", n.creds.Key)
	if err != nil {
		return StatusRejected, fmt.Errorf("%w: %w", ErrNotarization, err)
	}
	defer RemoveSecret(keyPath)

	archivePath, err := n.archive(artifactPath, displayName)
	if err != nil {
		return StatusRejected, fmt.Errorf("%w: %w", ErrNotarization, err)
	}
	defer func() {
		if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove notarization archive", "path", archivePath, "error", err)
		}
	}()

	slog.Info("submitting for notarization", "artifact", artifactPath)

	submission, err := n.backend.Submit(ctx, archivePath, keyPath, n.creds.KeyID, n.creds.Issuer)
	if err != nil {
		return StatusRejected, fmt.Errorf("%w: %s: %w", ErrNotarization, artifactPath, err)
	}

	if submission.Status != verdictAccepted {
		return StatusRejected, fmt.Errorf("%w: submission %s returned status %q",
			ErrNotarization, submission.ID, submission.Status)
	}

	if err := n.backend.Staple(ctx, artifactPath); err != nil {
		return StatusRejected, fmt.Errorf("%w: staple %s: %w", ErrNotarization, artifactPath, err)
	}

	slog.Info("notarization accepted", "artifact", artifactPath, "submission", submission.ID)
	return StatusAccepted, nil
}

// Packages the artifact into a zip archive under the scratch directory.
//
// The entry is stored as {parent-dir}/{basename} so the service sees the
// artifact inside its enclosing directory.
func (n *Notarizer) archive(artifactPath, displayName string) (string, error) {
	if err := os.MkdirAll(n.scratch, 0700); err != nil {
		return "", err
	}

	archivePath := filepath.Join(n.scratch, displayName+".zip")

	out, err := os.Create(archivePath)
	if err != nil {
		return "", err
	}

	if err := writeArchive(out, artifactPath); err != nil {
		out.Close()
		os.Remove(archivePath)
		return "", err
	}

	if err := out.Close(); err != nil {
		os.Remove(archivePath)
		return "", err
	}
	return archivePath, nil
}

// Writes the artifact into w as a zip with a single entry named
// {parent-dir}/{basename}.
func writeArchive(w io.Writer, artifactPath string) error {
	in, err := os.Open(artifactPath)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	header := &zip.FileHeader{
		Name:   filepath.ToSlash(filepath.Join(filepath.Base(filepath.Dir(artifactPath)), filepath.Base(artifactPath))),
		Method: zip.Deflate,
	}
	header.SetMode(info.Mode())

	zw := zip.NewWriter(w)

	entry, err := zw.CreateHeader(header)
	if err != nil {
		zw.Close()
		return err
	}
	if _, err := io.Copy(entry, in); err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}

// NotarizationBackend backed by xcrun notarytool and stapler.
type notaryTool struct {
	run runFunc
}

// Creates the xcrun-backed notarization backend.
func NewNotaryToolBackend() NotarizationBackend {
	return &notaryTool{run: runTool}
}

// Submits the archive and blocks until the service returns a terminal
// verdict, then parses the submission id and status from the JSON response.
func (t *notaryTool) Submit(ctx context.Context, archivePath, keyPath, keyID, issuer string) (Submission, error) {
	out, err := t.run(ctx, "xcrun", "notarytool", "submit", archivePath,
		"--key", keyPath,
		"--key-id", keyID,
		"--issuer", issuer,
		"--wait",
		"--output-format", "json",
	)
	if err != nil {
		return Submission{}, err
	}

	var submission Submission
	if err := json.Unmarshal([]byte(out), &submission); err != nil {
		return Submission{}, fmt.Errorf("parse notarytool response: %w", err)
	}
	return submission, nil
}

func (t *notaryTool) Staple(ctx context.Context, path string) error {
	_, err := t.run(ctx, "xcrun", "stapler", "staple", path)
	return err
}
