package sign

import "errors"

var (
	ErrUnavailable       = errors.New("signing credentials not configured")
	ErrCredentialStore   = errors.New("credential store operation failed")
	ErrNoIdentity        = errors.New("no usable signing identity found")
	ErrAmbiguousIdentity = errors.New("multiple signing identities found")
	ErrSigning           = errors.New("signing failed")
	ErrNotarization      = errors.New("notarization failed")
)
