package domain

import "testing"

func TestParseThemeCaseInsensitive(t *testing.T) {
	theme, err := ParseTheme("  HiSToRy ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if theme != ThemeHistory {
		t.Fatalf("got %q, want %q", theme, ThemeHistory)
	}
}

func TestParseThemeUnknown(t *testing.T) {
	if _, err := ParseTheme("skydiving"); err == nil {
		t.Fatal("expected error for unknown theme")
	}
}

func TestInterestProfileValidate(t *testing.T) {
	valid := InterestProfile{ThemeArt: 1.0, ThemeFood: 0}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outOfRange := InterestProfile{ThemeArt: 1.5}
	if err := outOfRange.Validate(); err == nil {
		t.Fatal("expected error for out-of-range weight")
	}
}
