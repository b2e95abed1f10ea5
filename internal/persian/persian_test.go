package persian

import "testing"

func TestNormalizeFoldsLegacyVariants(t *testing.T) {
	// Arabic kaf + Arabic yeh vs the canonical Persian forms.
	legacy := Normalize("كتاب")  // كتاب
	canonical := Normalize("کتاب") // کتاب
	if legacy == "" || legacy != canonical {
		t.Fatalf("variant fold mismatch: %q vs %q", legacy, canonical)
	}
}

func TestNormalizeTable(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain word", "کتاب", "کتاب"},
		{"surrounding junk", "  کتاب!! 123", "کتاب"},
		{"tatweel stripped", "کتـــاب", "کتاب"},
		{"diacritics stripped", "کِتاب", "کتاب"},
		{"madda folded to alef", "آب", "اب"},
		{"heh goal folded", "نامـہ", "نامه"},
		{"zwnj kept inside compound", "می‌روم", "می‌روم"},
		{"whitespace collapsed", "زنجیره   واژه‌ها", "زنجیره واژه‌ها"},
		{"latin only", "hello", ""},
		{"empty", "", ""},
		{"punctuation only", "?!،", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestBoundaryLetters(t *testing.T) {
	if got := FirstLetter("  کتاب، "); got != "ک" {
		t.Fatalf("FirstLetter = %q", got)
	}
	if got := LastLetter("کتاب"); got != "ب" {
		t.Fatalf("LastLetter = %q", got)
	}
	// ZWNJ at a boundary is not a letter.
	if got := LastLetter("واژه‌"); got != "ه" {
		t.Fatalf("LastLetter with trailing ZWNJ = %q", got)
	}
	if FirstLetter("123") != "" || LastLetter("") != "" {
		t.Fatal("expected empty boundary letters for unusable input")
	}
}

func TestLetterCountIgnoresJoiners(t *testing.T) {
	if n := LetterCount("می‌روم"); n != 5 {
		t.Fatalf("LetterCount = %d, want 5", n)
	}
	if n := LetterCount("ab"); n != 0 {
		t.Fatalf("LetterCount latin = %d, want 0", n)
	}
}
