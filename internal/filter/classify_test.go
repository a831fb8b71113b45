package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRuleset(t *testing.T) *Ruleset {
	t.Helper()
	rs, err := Compile(RulesetConfig{
		Downgrade: []Rule{
			{Label: "SENIORITY", Patterns: []string{`\bsenior\b`, `\bconfirme\b`}},
		},
		Exclude: []Rule{
			{Label: "TRADES", Patterns: []string{`electricien`, `\bmaintenance\b`}},
			{Label: "FINANCE", Patterns: []string{`comptab`}},
		},
		Labels: []Rule{
			{Label: "TECH", Patterns: []string{`developp?eur`, `\bdeveloper\b`, `ingenieur`}},
			{Label: "AI", Patterns: []string{`\bia\b`, `machine\s+learning`}},
		},
	})
	require.NoError(t, err)
	return rs
}

func TestClassify(t *testing.T) {
	rs := testRuleset(t)

	tests := []struct {
		name       string
		title      string
		relevant   bool
		downgraded bool
		labels     []string
	}{
		{
			name:     "plain tech title is relevant",
			title:    "Développeur Full Stack",
			relevant: true,
			labels:   []string{"TECH"},
		},
		{
			name:       "seniority match is kept but flagged",
			title:      "Senior Développeur Backend",
			relevant:   true,
			downgraded: true,
			labels:     []string{"TECH"},
		},
		{
			name:     "exclude tier drops outright",
			title:    "Electricien de maintenance",
			relevant: false,
		},
		{
			name:     "no tier match stays relevant without labels",
			title:    "Chef de projet junior",
			relevant: true,
		},
		{
			name:       "downgrade checked before exclude",
			title:      "Senior comptable",
			relevant:   true,
			downgraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := rs.Classify(tt.title, nil)
			assert.Equal(t, tt.relevant, v.Relevant, "relevant")
			assert.Equal(t, tt.downgraded, v.Downgraded, "downgraded")
			assert.Equal(t, tt.labels, v.Labels, "labels")
		})
	}
}

func TestClassify_AccentInsensitive(t *testing.T) {
	rs := testRuleset(t)

	// Accented and plain spellings must hit the same patterns.
	assert.True(t, rs.Classify("Ingénieur DevOps", nil).Relevant)
	assert.Contains(t, rs.Classify("Ingénieur DevOps", nil).Labels, "TECH")
	assert.True(t, rs.Classify("Développeur confirmé", nil).Downgraded)
}

func TestClassify_AccentedPatternsMatch(t *testing.T) {
	// Rule files written with the accents kept in must behave the same as
	// plain-ASCII ones: the pattern side is accent-stripped too.
	rs, err := Compile(RulesetConfig{
		Downgrade: []Rule{{Label: "SENIORITY", Patterns: []string{`confirmé`}}},
		Exclude:   []Rule{{Label: "SALES", Patterns: []string{`télévente`}}},
		Labels:    []Rule{{Label: "TECH", Patterns: []string{`développeur`}}},
	})
	require.NoError(t, err)

	assert.Contains(t, rs.Classify("Développeur Web", nil).Labels, "TECH")
	assert.Contains(t, rs.Classify("Developpeur Web", nil).Labels, "TECH")
	assert.True(t, rs.Classify("Développeur confirmé", nil).Downgraded)
	assert.False(t, rs.Classify("Agent de televente", nil).Relevant)
}

func TestClassify_LabelsFromExtraLabels(t *testing.T) {
	rs := testRuleset(t)
	v := rs.Classify("Poste polyvalent", []string{"machine learning"})
	assert.Contains(t, v.Labels, "AI")
}

func TestClassify_IAWholeWordOnly(t *testing.T) {
	rs := testRuleset(t)

	// "Industrialisation" must not trip the IA label.
	assert.NotContains(t, rs.Classify("Chargé d'industrialisation", nil).Labels, "AI")
	assert.Contains(t, rs.Classify("Spécialiste IA", nil).Labels, "AI")
}

func TestCompile_BadPattern(t *testing.T) {
	_, err := Compile(RulesetConfig{
		Exclude: []Rule{{Label: "BAD", Patterns: []string{`(`}}},
	})
	assert.Error(t, err)
}

func TestDefaultRulesCompile(t *testing.T) {
	_, err := Compile(DefaultRules)
	assert.NoError(t, err)
}
