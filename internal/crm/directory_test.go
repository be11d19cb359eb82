package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_NormalizationInvariance(t *testing.T) {
	dir := New(SeedProfiles())

	variants := []string{"A100", "a100", "a 100", " A100 ", "A 1 0 0", "\ta100\n"}
	for _, v := range variants {
		profile, ok := dir.Lookup(v)
		require.True(t, ok, "expected %q to resolve", v)
		assert.Equal(t, "M. Abdlbasset elhamrit", profile.Identity.Name)
	}
}

func TestLookup_UnknownIdentifier(t *testing.T) {
	dir := New(SeedProfiles())

	_, ok := dir.Lookup("Z999")
	assert.False(t, ok)
}

func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "A100", NormalizeIdentifier(" a 100 "))
	assert.Equal(t, "B200", NormalizeIdentifier("b200"))
	assert.Equal(t, "", NormalizeIdentifier("   "))
}

func TestBriefing_ContainsStrategyAndAlert(t *testing.T) {
	dir := New(SeedProfiles())

	profile, ok := dir.Lookup("B200")
	require.True(t, ok)

	briefing := profile.Briefing()
	assert.Contains(t, briefing, "Mme. Samira Idrissi")
	assert.Contains(t, briefing, "Surveillance Fraude active.")
	assert.Contains(t, briefing, "Ne promets AUCUN remboursement")
}
