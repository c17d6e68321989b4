package match

import "testing"

func TestTokenSetRatioIdentical(t *testing.T) {
	if got := TokenSetRatio("AMD Ryzen 5 7600X", "AMD Ryzen 5 7600X"); got != 100 {
		t.Fatalf("identical names scored %d, want 100", got)
	}
}

func TestTokenSetRatioOrderIndependent(t *testing.T) {
	a := TokenSetRatio("Ryzen 5 7600X AMD", "AMD Ryzen 5 7600X")
	if a != 100 {
		t.Fatalf("reordered tokens scored %d, want 100", a)
	}
}

func TestTokenSetRatioContainment(t *testing.T) {
	// All of the offer's tokens appear in the candidate name, so the
	// token-set score is maximal despite the extra words.
	got := TokenSetRatio("ASUS ROG Strix Z790 Gaming", "ASUS ROG Strix Z790-E Gaming WiFi")
	if got < 85 {
		t.Fatalf("containment scored %d, want >= 85", got)
	}
}

func TestTokenSetRatioUnrelated(t *testing.T) {
	got := TokenSetRatio("Corsair Vengeance 32GB DDR5", "ASUS ROG Strix Z790-E Gaming WiFi")
	if got >= 85 {
		t.Fatalf("unrelated names scored %d, want < 85", got)
	}
}

func TestTokenSetRatioPartialOverlap(t *testing.T) {
	// Shares most tokens but diverges on the model number: close, not close
	// enough for the default threshold.
	got := TokenSetRatio("ASUS ROG Strix B650 Gaming", "ASUS ROG Strix Z790-E Gaming WiFi")
	if got >= 85 {
		t.Fatalf("partial overlap scored %d, want < 85", got)
	}
	if got == 0 {
		t.Fatal("partial overlap should not score zero")
	}
}

func TestTokenSetRatioEmpty(t *testing.T) {
	if got := TokenSetRatio("", "AMD Ryzen 5"); got != 0 {
		t.Fatalf("empty input scored %d, want 0", got)
	}
}

func TestNormalizeModel(t *testing.T) {
	cases := []struct{ in, want string }{
		{"i5-13600K", "I5-13600K"},
		{" i5 13600k ", "I513600K"},
		{"BX80677\tG4560", "BX80677G4560"},
	}
	for _, c := range cases {
		if got := normalizeModel(c.in); got != c.want {
			t.Errorf("normalizeModel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
