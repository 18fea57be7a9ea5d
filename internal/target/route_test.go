package target

import "testing"

func macPolicy() Policy {
	return Policy{HostOS: "darwin", SkipMusl: true}
}

func TestClassifyMacHostDefaults(t *testing.T) {
	tests := []struct {
		triple Triple
		want   Decision
	}{
		{"aarch64-apple-darwin", Native},
		{"x86_64-apple-darwin", Native},
		{"x86_64-pc-windows-msvc", Isolated},
		{"x86_64-unknown-linux-gnu", Isolated},
		{"aarch64-unknown-linux-gnu", Isolated},
		{"x86_64-unknown-linux-musl", Skipped},
		{"aarch64-unknown-linux-musl", Skipped},
	}

	for _, tt := range tests {
		got, _ := Classify(tt.triple, macPolicy())
		if got != tt.want {
			t.Errorf("Classify(%s) = %s, want %s", tt.triple, got, tt.want)
		}
	}
}

func TestClassifyMuslOptIn(t *testing.T) {
	p := Policy{HostOS: "darwin", SkipMusl: false}

	got, _ := Classify("x86_64-unknown-linux-musl", p)
	if got != Isolated {
		t.Fatalf("Classify(musl, SkipMusl=false) = %s, want isolated", got)
	}
}

func TestClassifyDarwinOnLinuxHost(t *testing.T) {
	p := Policy{HostOS: "linux", SkipMusl: true}

	got, reason := Classify("aarch64-apple-darwin", p)
	if got != Skipped {
		t.Fatalf("Classify(darwin on linux host) = %s, want skipped", got)
	}
	if reason == "" {
		t.Fatal("skipped decision carries no reason")
	}
}

func TestClassifyWindowsOnWindowsHost(t *testing.T) {
	p := Policy{HostOS: "windows", SkipMusl: true}

	got, _ := Classify("x86_64-pc-windows-msvc", p)
	if got != Native {
		t.Fatalf("Classify(windows on windows host) = %s, want native", got)
	}
}

func TestClassifyUnrecognized(t *testing.T) {
	got, _ := Classify("wasm32-unknown-unknown", macPolicy())
	if got != Skipped {
		t.Fatalf("Classify(wasm) = %s, want skipped", got)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for _, triple := range DefaultTriples {
		first, _ := Classify(triple, macPolicy())
		for i := 0; i < 3; i++ {
			if got, _ := Classify(triple, macPolicy()); got != first {
				t.Fatalf("Classify(%s) not deterministic: %s then %s", triple, first, got)
			}
		}
	}
}

func TestPlanCoversEveryTriple(t *testing.T) {
	plan := Plan(DefaultTriples, macPolicy())
	if len(plan) != len(DefaultTriples) {
		t.Fatalf("plan has %d routes, want %d", len(plan), len(DefaultTriples))
	}
	for i, route := range plan {
		if route.Triple != DefaultTriples[i] {
			t.Fatalf("plan[%d] = %s, want %s", i, route.Triple, DefaultTriples[i])
		}
	}
}
