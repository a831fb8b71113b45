package filter

// Verdict is the outcome of classifying one posting.
//
// Downgraded postings stay visible in the inbox but carry a soft-reject tag;
// excluded postings never reach the reviewer; a posting matching neither
// tier is relevant. Label rules only attach category labels (TECH, AI, ...)
// for the inbox row, they never gate relevance.
type Verdict struct {
	Relevant   bool
	Downgraded bool
	Tags       []string
	Labels     []string
}

// Classify evaluates the tiers in fixed order: downgrade first, then
// exclude. First match wins within each tier. A downgrade match keeps the
// posting relevant-but-flagged; the exclude tier is only consulted when no
// downgrade pattern matched.
//
// Rationale for the two tiers: a seniority mismatch is worth keeping
// visible-but-flagged, a wrong domain entirely should never reach the
// reviewer.
func (rs *Ruleset) Classify(title string, extraLabels []string) Verdict {
	text := normalizeText(title)
	for _, l := range extraLabels {
		text += " " + normalizeText(l)
	}

	v := Verdict{}

	for _, r := range rs.downgrade {
		if r.re.MatchString(text) {
			v.Downgraded = true
			v.Tags = append(v.Tags, r.label)
			break
		}
	}

	if !v.Downgraded {
		for _, r := range rs.exclude {
			if r.re.MatchString(text) {
				return v // excluded outright
			}
		}
	}

	for _, r := range rs.labels {
		if r.re.MatchString(text) && !contains(v.Labels, r.label) {
			v.Labels = append(v.Labels, r.label)
		}
	}

	v.Relevant = true
	return v
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
