// Package sign manages the signing and notarization of release binaries.
//
// Signing runs against an isolated keychain created for the invocation: the
// certificate is imported into a fresh keychain appended to the global
// search list, exactly one identity is resolved, and every binary is signed
// against it. Teardown removes the keychain and restores the search list to
// its pre-setup state on every termination path, including interruption.
//
// Notarization zips a signed binary, submits it to the attestation service,
// blocks for a terminal verdict, and staples accepted tickets onto the
// original artifact. Transient secrets (certificate, signing key) and
// staging archives are removed whether or not the surrounding operation
// succeeds.
//
// External tools (security, codesign, xcrun) sit behind the
// CredentialStore, SigningBackend, and NotarizationBackend interfaces so
// orchestration logic is testable without macOS tooling.
package sign
