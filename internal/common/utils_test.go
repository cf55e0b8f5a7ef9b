package common

import "testing"

func TestCapitalizeFirst(t *testing.T) {
	cases := map[string]string{
		"":                       "",
		"clear sky":              "Clear sky",
		"Clear sky":              "Clear sky",
		"облачно с прояснениями": "Облачно с прояснениями",
		"x":                      "X",
		"light RAIN":             "Light RAIN",
	}
	for in, want := range cases {
		if got := CapitalizeFirst(in); got != want {
			t.Errorf("CapitalizeFirst(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeCity(t *testing.T) {
	if got := NormalizeCity("New York"); got != "new york" {
		t.Fatalf("expected %q, got %q", "new york", got)
	}
	if !SameCity("MOSCOW", "moscow") {
		t.Fatal("expected case-insensitive match")
	}
	if SameCity("Moscow", "Moscow ") {
		t.Fatal("expected whitespace to matter")
	}
}

// Final sigma lowercases differently from capital sigma, so matching and keys
// must come from the same fold.
func TestNormalizeCityAgreesWithSameCity(t *testing.T) {
	pairs := [][2]string{
		{"ΚΟΣ", "Κος"},
		{"MOSCOW", "moscow"},
	}
	for _, p := range pairs {
		same := SameCity(p[0], p[1])
		keysEqual := NormalizeCity(p[0]) == NormalizeCity(p[1])
		if !same || !keysEqual {
			t.Errorf("%q vs %q: SameCity=%v, equal keys=%v", p[0], p[1], same, keysEqual)
		}
	}
}
