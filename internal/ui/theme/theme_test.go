package theme

import "testing"

func TestGetTheme(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"default", "default"},
		{"catppuccin", "catppuccin-mocha"},
		{"catppuccin-mocha", "catppuccin-mocha"},
		{"unknown", "default"},
		{"", "default"},
	}

	for _, tt := range tests {
		if got := GetTheme(tt.name).Name; got != tt.want {
			t.Errorf("GetTheme(%q).Name = %q, want %q", tt.name, got, tt.want)
		}
	}
}
