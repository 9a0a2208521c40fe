// Package dashboard serves the web UI for the behavior-monitoring
// daemon: overview, employee risk, alerts, analytics, uploads, and the
// analysis chat, plus the JSON API behind those pages.
package dashboard

import (
	"fmt"
	"html/template"
	"strings"
)

// Pastel palette readable on the dark theme.
var avatarPalette = [...]string{
	"#7ec8e3", // sky blue
	"#a78bda", // lavender
	"#e8a0bf", // dusty rose
	"#f4b183", // peach
	"#b5d99c", // sage green
	"#8cc5b2", // mint
	"#d6c28e", // warm sand
}

// employeeAvatar returns an inline SVG avatar derived from the
// employee's email: a colored disc with the name's initials. The color
// is stable per email so rows keep their identity across renders.
func employeeAvatar(name, email string, size int) template.HTML {
	if email == "" {
		return ""
	}
	h := fnv32a(email)
	bg := avatarPalette[h%uint32(len(avatarPalette))]

	return template.HTML(fmt.Sprintf(
		`<svg class="avatar" width="%d" height="%d" viewBox="0 0 40 40">`+
			`<circle cx="20" cy="20" r="20" fill="%s"/>`+
			`<text x="20" y="26" text-anchor="middle" font-size="16" font-family="sans-serif" fill="#0a0a0f">%s</text>`+
			`</svg>`,
		size, size, bg, initials(name)))
}

func initials(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "?"
	case 1:
		return strings.ToUpper(parts[0][:1])
	default:
		return strings.ToUpper(parts[0][:1] + parts[len(parts)-1][:1])
	}
}

// fnv32a implements FNV-1a hash.
func fnv32a(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
