package main

import "testing"

func TestEnvLocale(t *testing.T) {
	tests := []struct{ lang, want string }{
		{"fr_FR.UTF-8", "fr-FR"},
		{"en_US", "en-US"},
		{"de_DE@euro", "de-DE"},
		{"C", ""},
		{"POSIX", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Setenv("LANG", tt.lang)
		if got := envLocale(); got != tt.want {
			t.Errorf("envLocale() with LANG=%q = %q, want %q", tt.lang, got, tt.want)
		}
	}
}
