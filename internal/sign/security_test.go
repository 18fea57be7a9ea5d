package sign

import "testing"

func TestParseSearchList(t *testing.T) {
	out := `    "/Users/dev/Library/Keychains/login.keychain-db"
    "/Library/Keychains/System.keychain"
`
	got := parseSearchList(out)
	if len(got) != 2 {
		t.Fatalf("parsed %d entries, want 2: %v", len(got), got)
	}
	if got[0] != "/Users/dev/Library/Keychains/login.keychain-db" {
		t.Fatalf("entry[0] = %q", got[0])
	}
	if got[1] != "/Library/Keychains/System.keychain" {
		t.Fatalf("entry[1] = %q", got[1])
	}
}

func TestParseSearchListEmpty(t *testing.T) {
	if got := parseSearchList("\n"); len(got) != 0 {
		t.Fatalf("parsed %d entries from empty output", len(got))
	}
}

func TestParseIdentities(t *testing.T) {
	out := `  1) 0123456789ABCDEF0123456789ABCDEF01234567 "Developer ID Application: Example Corp (TEAMID)"
     1 valid identities found
`
	got := parseIdentities(out)
	if len(got) != 1 {
		t.Fatalf("parsed %d identities, want 1: %v", len(got), got)
	}
	if got[0].Fingerprint != "0123456789ABCDEF0123456789ABCDEF01234567" {
		t.Fatalf("fingerprint = %q", got[0].Fingerprint)
	}
	if got[0].Name != "Developer ID Application: Example Corp (TEAMID)" {
		t.Fatalf("name = %q", got[0].Name)
	}
}

func TestParseIdentitiesNone(t *testing.T) {
	out := `     0 valid identities found
`
	if got := parseIdentities(out); len(got) != 0 {
		t.Fatalf("parsed %d identities from empty listing", len(got))
	}
}

func TestParseIdentitiesMultiple(t *testing.T) {
	out := `  1) AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA "Developer ID Application: One"
  2) BBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB "Developer ID Application: Two"
     2 valid identities found
`
	got := parseIdentities(out)
	if len(got) != 2 {
		t.Fatalf("parsed %d identities, want 2", len(got))
	}
}
