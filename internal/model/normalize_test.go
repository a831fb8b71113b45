package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_EmptyTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
	}{
		{"empty", ""},
		{"whitespace only", "   \t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(Candidate{
				Source: SourceKeejob,
				Title:  tt.title,
				URL:    "https://www.keejob.com/offres-emploi/12345/dev/",
			}, time.Now())

			var nerr *NormalizationError
			assert.ErrorAs(t, err, &nerr)
		})
	}
}

func TestNormalize_TrimsFields(t *testing.T) {
	p, err := Normalize(Candidate{
		Source:     SourceKeejob,
		ExternalID: " 98765 ",
		Title:      "  Développeur Full Stack  ",
		Company:    " ACME ",
		Location:   " Tunis ",
		URL:        "https://www.keejob.com/offres-emploi/98765/dev-fullstack/",
	}, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, "Développeur Full Stack", p.Title)
	assert.Equal(t, "ACME", p.Company)
	assert.Equal(t, "Tunis", p.Location)
	assert.Equal(t, "98765", p.ExternalID)
}

func TestNormalize_NoIdentity(t *testing.T) {
	_, err := Normalize(Candidate{
		Source: SourceTanitjobs,
		Title:  "Some job",
	}, time.Now())

	var nerr *NormalizationError
	assert.ErrorAs(t, err, &nerr)
}

func TestCanonicalURL_TanitjobsCollapsesSlugForm(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"id only", "https://www.tanitjobs.com/job/284919/"},
		{"id with slug", "https://www.tanitjobs.com/job/284919/developpeur-web-senior/"},
		{"id with query", "https://www.tanitjobs.com/job/284919/?utm_source=alert"},
		{"relative", "/job/284919/developpeur-web-senior/"},
	}

	want := "https://www.tanitjobs.com/job/284919/"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, CanonicalURL(SourceTanitjobs, tt.url))
		})
	}
}

func TestCanonicalURL_Keejob(t *testing.T) {
	got := CanonicalURL(SourceKeejob, "https://www.keejob.com/offres-emploi/12345/ingenieur-devops/?ref=home")
	assert.Equal(t, "https://www.keejob.com/offres-emploi/12345/", got)
}

func TestCanonicalURL_StripsQueryByDefault(t *testing.T) {
	got := CanonicalURL(SourceAneti, "https://www.emploi.nat.tn/offre/4711?session=abc#top")
	assert.Equal(t, "https://www.emploi.nat.tn/offre/4711", got)
}

func TestIdentity_PrefersExternalID(t *testing.T) {
	p := Posting{Source: SourceKeejob, ExternalID: "42", CanonicalURL: "https://example.com/x"}
	assert.Equal(t, "42", p.Identity())
	assert.Equal(t, "keejob|42", p.IdentityKey())

	p.ExternalID = ""
	assert.Equal(t, "https://example.com/x", p.Identity())
}

func TestNormalize_SameJobTwoURLShapesDedupeToOneIdentity(t *testing.T) {
	a, err := Normalize(Candidate{
		Source: SourceTanitjobs,
		Title:  "Développeur Web",
		URL:    "https://www.tanitjobs.com/job/300100/",
	}, time.Now())
	assert.NoError(t, err)

	b, err := Normalize(Candidate{
		Source: SourceTanitjobs,
		Title:  "Développeur Web",
		URL:    "https://www.tanitjobs.com/job/300100/developpeur-web/",
	}, time.Now())
	assert.NoError(t, err)

	assert.Equal(t, a.IdentityKey(), b.IdentityKey())
}
