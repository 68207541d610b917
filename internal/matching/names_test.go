package matching

import "testing"

func TestEquivalentTeamNames(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"Boston Celtics", "Boston Celtics", true},
		{"boston  celtics", "Boston Celtics", true},
		{"Boston", "Boston Celtics", true},
		{"LA Lakers", "Los Angeles Lakers", false},
		{"Los Angeles Lakers", "Los Angeles Clippers", true}, // first-two-words rule
		{"Lakers", "Los Angeles Lakers", true},
		{"The Miami Heat", "Miami Heat", true},
		{"St. Louis Blues", "St Louis Blues", true},
		{"Golden State Warriors", "Golden State", true},
		{"New York Knicks", "New York Jets", true}, // first-two-words rule, known skew
		{"Boston Celtics", "Denver Nuggets", false},
		{"", "Boston Celtics", false},
		{"Celtics", "Nuggets", false},
	}
	for _, tc := range cases {
		if got := EquivalentTeamNames(tc.a, tc.b); got != tc.want {
			t.Errorf("EquivalentTeamNames(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Boston   Celtics ", "boston celtics"},
		{"St. Louis", "st louis"},
		{"Notre-Dame", "notre dame"},
		{"L.A. Lakers", "l a lakers"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSimilarityBounds(t *testing.T) {
	if s := Similarity("Boston Celtics", "Boston Celtics"); s != 1 {
		t.Fatalf("identical names should score 1, got %f", s)
	}
	if s := Similarity("Boston Celtics", ""); s != 0 {
		t.Fatalf("empty name should score 0, got %f", s)
	}
	s := Similarity("Boston Celtics", "Boston")
	if s <= 0 || s >= 1 {
		t.Fatalf("partial match should score in (0, 1), got %f", s)
	}
}

func TestSimilarityRanksCloserName(t *testing.T) {
	exact := Similarity("Miami Heat", "Miami Heat")
	partial := Similarity("Miami Heat", "Miami")
	other := Similarity("Miami Heat", "Utah Jazz")
	if !(exact > partial && partial > other) {
		t.Fatalf("expected exact > partial > unrelated, got %f, %f, %f", exact, partial, other)
	}
}
