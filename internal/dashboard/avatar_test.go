package dashboard

import (
	"strings"
	"testing"
)

func TestEmployeeAvatarDeterministic(t *testing.T) {
	a := employeeAvatar("Dana Webb", "dana.webb@corp.io", 20)
	b := employeeAvatar("Dana Webb", "dana.webb@corp.io", 20)
	if a != b {
		t.Error("same email should produce the same avatar")
	}
	if !strings.Contains(string(a), "DW") {
		t.Errorf("avatar should carry initials, got %q", a)
	}
	if !strings.Contains(string(a), `width="20"`) {
		t.Errorf("avatar should honor the size, got %q", a)
	}
}

func TestEmployeeAvatarEmptyEmail(t *testing.T) {
	if employeeAvatar("Nobody", "", 20) != "" {
		t.Error("empty email should yield no avatar")
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Dana Webb", "DW"},
		{"Priya Anand Nair", "PN"},
		{"cher", "C"},
		{"", "?"},
	}
	for _, tt := range tests {
		if got := initials(tt.name); got != tt.want {
			t.Errorf("initials(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
