package crm

import (
	"fmt"
	"strings"
)

// Identity carries the customer's display name and commercial segment.
type Identity struct {
	Name    string
	Segment string
}

// Psychology carries handling hints surfaced to the voice agent as text.
type Psychology struct {
	Patience       string
	TonePreference string
}

// History summarizes the customer's claim record.
type History struct {
	Claims int
	Notes  string
}

// Alert is an actionable flag attached to a profile.
type Alert struct {
	Type    string
	Message string
}

// CustomerProfile is the immutable CRM record for one customer.
type CustomerProfile struct {
	Identifier string
	Identity   Identity
	Psychology Psychology
	History    History
	Alert      Alert
	Strategy   string
}

// Directory is a read-only lookup from caller-supplied identifiers
// (CIN or policy number) to customer profiles. Profiles are loaded once
// at construction and never mutated afterwards.
type Directory struct {
	profiles map[string]CustomerProfile
}

// New builds a directory from the given profiles, keyed by normalized
// identifier. Later duplicates overwrite earlier ones.
func New(profiles []CustomerProfile) *Directory {
	m := make(map[string]CustomerProfile, len(profiles))
	for _, p := range profiles {
		m[NormalizeIdentifier(p.Identifier)] = p
	}
	return &Directory{profiles: m}
}

// NormalizeIdentifier makes spoken-digit identifiers comparable: leading
// and trailing whitespace is trimmed, embedded spaces are removed and the
// result is uppercased, so "a 100" and "A100" resolve identically.
func NormalizeIdentifier(identifier string) string {
	cleaned := strings.TrimSpace(identifier)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	return strings.ToUpper(cleaned)
}

// Lookup resolves an identifier to a profile. The boolean reports whether
// the customer is known; callers must treat an unknown customer as a
// soft condition and continue unauthenticated.
func (d *Directory) Lookup(identifier string) (CustomerProfile, bool) {
	p, ok := d.profiles[NormalizeIdentifier(identifier)]
	return p, ok
}

// Briefing renders the profile as the handling instruction block the
// voice agent consumes after a successful verification.
func (p CustomerProfile) Briefing() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PROFIL CLIENT: %s (%s)\n", p.Identity.Name, p.Identity.Segment)
	fmt.Fprintf(&b, "PSYCHOLOGIE: patience %s, ton %s\n", p.Psychology.Patience, p.Psychology.TonePreference)
	fmt.Fprintf(&b, "HISTORIQUE: %d sinistre(s). %s\n", p.History.Claims, p.History.Notes)
	fmt.Fprintf(&b, "ALERTE [%s]: %s\n", p.Alert.Type, p.Alert.Message)
	fmt.Fprintf(&b, "STRATEGIE: %s", p.Strategy)
	return b.String()
}
