package rules

// Universal returns rules that work for any Betty Protocol repository.
// They only expect the standard canonical documents to exist.
func Universal() *Rules {
	r := withSubDefaults()
	r.CanonicalScope = []string{
		"README.md",
		"CLAUDE.md",
		"META.yaml",
		"CHANGELOG.md",
		PrimerDoc,
	}
	r.Excludes = []string{
		"20_receipts/**",
		"70_evidence/**",
		"90_archive/**",
		"__pycache__/**",
		".git/**",
		"node_modules/**",
		"venv/**",
		".venv/**",
		"*-env/**",
	}
	r.ProtectedFromArchive = []string{
		"20_receipts/**",
		"70_evidence/**",
		"README.md",
		"CLAUDE.md",
		"META.yaml",
		"CHANGELOG.md",
		PrimerDoc,
	}
	r.StalePathPatterns = []StalePathRule{}
	return r
}

// withSubDefaults returns empty rules with every optional sub-config at its
// default. Rules files are decoded on top of it so absent keys keep them.
func withSubDefaults() *Rules {
	return &Rules{
		ValidatorInventory: ValidatorInventory{
			Registry:              "validators/__init__.py",
			Directory:             "validators",
			FileGlob:              "check_*.py",
			OmissionThreshold:     0.2,
			GeneratedDocs:         []string{PrimerDoc},
			GeneratedMinOmissions: 3,
		},
		ArchiveCandidates: ArchiveCandidates{
			MinAgeDays: 90,
		},
		GeneratorDrift: map[string]GeneratorRule{},
	}
}
