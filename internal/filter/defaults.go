package filter

// DefaultRules is the rule set used when the config file carries none.
// Exclude patterns are kept conservative; it is easy to over-filter.
var DefaultRules = RulesetConfig{
	Downgrade: []Rule{
		{
			Label: "SENIORITY",
			Patterns: []string{
				`\bsenior\b`, `\bsr\b`, `\bconfirme(e)?\b`,
				`\bprincipal\b`, `\bstaff\b`, `\bhead\s+of\b`,
				`\bdirect(or|eur|rice)\b`, `\bchief\b`, `\bvp\b`,
			},
		},
	},
	Exclude: []Rule{
		{
			Label: "TRADES",
			Patterns: []string{
				`electri(c|que|cit)`, `automatisme`, `\bmaintenance\b`,
				`\bindustri(el|elle|els|elles)\b`, `manufactur`, `assemblage`,
				`genie\s+civil`, `coffrage`, `ferraillage`, `revit`,
			},
		},
		{
			Label: "NON_TARGET_ROLES",
			Patterns: []string{
				`comptab`, `\bfinance\b`, `ressources\s+humaines`, `\brh\b`,
				`\bmarketing\b`, `video\s+editor`, `monteur\s+video`,
				`\bqa\b`, `test(\b|eur|euse)`,
			},
		},
		{
			Label: "RETAIL_LOGISTICS",
			Patterns: []string{
				`\bcaiss(ier|e)\b`, `\bcashier\b`, `\blivreur\b`, `\bcoursier\b`,
				`\bchauffeur\b`, `\bpreparateur\b`, `\bvendeu(r|se)\b`,
			},
		},
	},
	Labels: []Rule{
		{
			Label: "TECH",
			Patterns: []string{
				`full[\s-]?stack`, `developp?e(ur|r)`, `\bdeveloper\b`,
				`ingenieur`, `\bengineer\b`, `front[\s-]?end`, `back[\s-]?end`,
				`\bsoftware\b`, `\bweb\b`, `informatique`, `\bdevops\b`,
				`\breact\b`, `\bnode\b`, `javascript`, `typescript`,
				`\bpython\b`, `\bsql\b`, `\bdocker\b`, `postgres`,
			},
		},
		{
			Label: "AI",
			Patterns: []string{
				`machine\s+learning`, `deep\s+learning`,
				`intelligence\s+artificielle`, `computer\s+vision`,
				`\byolo\b`, `\brag\b`, `\bllm\b`, `\bia\b`,
			},
		},
		{
			Label: "SALES",
			Patterns: []string{
				`\bsales\b`, `\bcommercial\b`, `business\s+development`,
				`account\s+(executive|manager)`, `technico-commercial`,
				`televente`, `teleconseill(er|ere)`, `call\s+center`,
				`centre\s+d.appels?`,
			},
		},
	},
}
