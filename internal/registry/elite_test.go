package registry

import "testing"

func TestLookupConfidenceTiers(t *testing.T) {
	r := New()

	tests := []struct {
		name           string
		query          string
		wantMatch      bool
		wantName       string
		wantConfidence float64
	}{
		{"Exact name", "John Danaher", true, "John Danaher", 1.0},
		{"Exact alias", "BJJ Fanatics", true, "Bernardo Faria", 1.0},
		{"Case and punctuation ignored", "john-danaher", true, "John Danaher", 1.0},
		{"Channel containing the name", "Lachlan Giles Grappling", true, "Lachlan Giles", 0.9},
		{"Prefix of an alias", "Absolute MMA", true, "Lachlan Giles", 0.8},
		{"Channel containing an alias", "The Official Buchecha Channel", true, "Marcus Buchecha", 0.9},
		{"Unknown channel", "Random Hobbyist BJJ", false, "", 0},
		{"Empty input", "", false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, ok := r.Lookup(tt.query)
			if ok != tt.wantMatch {
				t.Fatalf("Lookup(%q) matched=%v, want %v", tt.query, ok, tt.wantMatch)
			}
			if !tt.wantMatch {
				return
			}
			if match.Name != tt.wantName {
				t.Errorf("Lookup(%q).Name = %s, want %s", tt.query, match.Name, tt.wantName)
			}
			if match.Confidence != tt.wantConfidence {
				t.Errorf("Lookup(%q).Confidence = %.2f, want %.2f", tt.query, match.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestGenericChannelNamesDoNotMatch(t *testing.T) {
	r := New()

	// Fragments of roster names must not grant elite status: a registry
	// hit hands out the no-transcript bypass, so a channel called "Team"
	// or "MMA" being treated as pre-vetted would gut the safeguard.
	generic := []string{
		"B",
		"Team",
		"MMA",
		"Academy",
		"Jiu Jitsu",
		"St Kilda",
		"Gracie",
		"New Wave",
	}

	for _, query := range generic {
		if match, ok := r.Lookup(query); ok {
			t.Errorf("Lookup(%q) matched %s (%.2f), want no match", query, match.Name, match.Confidence)
		}
		if r.IsElite(query) {
			t.Errorf("IsElite(%q) = true, want false", query)
		}
	}
}

func TestIsElite(t *testing.T) {
	r := NewWithRoster([]Instructor{
		{Name: "Test Instructor", Academy: "Test Academy", Aliases: []string{"TI Grappling"}},
	})

	if !r.IsElite("Test Instructor") {
		t.Error("roster name should be elite")
	}
	if !r.IsElite("TI Grappling") {
		t.Error("alias should be elite")
	}
	if r.IsElite("Someone Else") {
		t.Error("unknown channel must not be elite")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"John Danaher", "john danaher"},
		{"  B-Team  Jiu   Jitsu ", "b team jiu jitsu"},
		{"Fifty/50", "fifty 50"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
