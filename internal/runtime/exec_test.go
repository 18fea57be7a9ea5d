package runtime

import (
	"slices"
	"testing"
)

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name      string
		base      []string
		overrides []string
		want      []string
	}{
		{
			name:      "override existing key",
			base:      []string{"PATH=/usr/bin", "CC=gcc"},
			overrides: []string{"CC=aarch64-linux-gnu-gcc"},
			want:      []string{"CC=aarch64-linux-gnu-gcc", "PATH=/usr/bin"},
		},
		{
			name:      "add new key",
			base:      []string{"PATH=/usr/bin"},
			overrides: []string{"RUSTFLAGS=-C target-feature=+crt-static"},
			want:      []string{"PATH=/usr/bin", "RUSTFLAGS=-C target-feature=+crt-static"},
		},
		{
			name:      "empty base",
			base:      nil,
			overrides: []string{"CC=musl-gcc"},
			want:      []string{"CC=musl-gcc"},
		},
		{
			name:      "value with equals sign",
			base:      []string{"FLAGS=a=b"},
			overrides: nil,
			want:      []string{"FLAGS=a=b"},
		},
		{
			name:      "malformed entries skipped",
			base:      []string{"NOEQUALS", "A=1"},
			overrides: []string{"ALSO_BAD", "B=2"},
			want:      []string{"A=1", "B=2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeEnv(tt.base, tt.overrides)
			slices.Sort(got)
			slices.Sort(tt.want)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("mergeEnv = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextExecID(t *testing.T) {
	a := nextExecID()
	b := nextExecID()
	if a == b {
		t.Fatalf("nextExecID returned duplicate: %q", a)
	}
	if a == "" || b == "" {
		t.Fatal("nextExecID returned empty string")
	}
}
