// Package knowledge holds the built-in disease reference catalog: per-disease
// treatment profiles, free-text diagnosis resolution, and plan-tier coverage
// rules. It is the read-only ground truth the validators score claims against.
package knowledge

import (
	"sort"
	"strings"

	"github.com/openclaims/heron/internal/domain"
)

// aliasEntry binds a lowercase diagnosis phrase to a disease key. Entries are
// matched by substring against the normalized diagnosis, longest phrase first
// so that "kidney infection" wins over "kidney stone"-adjacent fragments.
type aliasEntry struct {
	Phrase string
	Key    string
}

// Base is the in-memory disease knowledge base. It is immutable after
// construction and safe for concurrent use.
type Base struct {
	profiles   map[string]domain.DiseaseProfile
	aliases    []aliasEntry
	coverage   map[domain.PlanTier]domain.CoverageRules
	guidelines Guidelines
}

// NewBase builds the knowledge base from the built-in catalog.
func NewBase() *Base {
	profiles := make(map[string]domain.DiseaseProfile)
	for _, p := range catalog() {
		profiles[p.Key] = p
	}

	merged := autoAliases(profiles)
	for phrase, key := range manualAliases() {
		merged[phrase] = key
	}

	aliases := make([]aliasEntry, 0, len(merged))
	for phrase, key := range merged {
		aliases = append(aliases, aliasEntry{Phrase: phrase, Key: key})
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i].Phrase) != len(aliases[j].Phrase) {
			return len(aliases[i].Phrase) > len(aliases[j].Phrase)
		}
		return aliases[i].Phrase < aliases[j].Phrase
	})

	return &Base{
		profiles:   profiles,
		aliases:    aliases,
		coverage:   coverageRules(),
		guidelines: treatmentGuidelines(),
	}
}

// autoAliases derives lookup phrases from profile names and keys: the name
// with its "(clarifier)" stripped, the key with underscores as spaces, and
// suffix-trimmed forms like "dengue" from "Dengue Fever".
func autoAliases(profiles map[string]domain.DiseaseProfile) map[string]string {
	out := make(map[string]string)
	for key, p := range profiles {
		name := strings.ToLower(p.Name)
		keyClean := strings.ReplaceAll(key, "_", " ")

		if strings.Contains(name, "fever") {
			out[strings.TrimSpace(strings.ReplaceAll(name, "fever", ""))] = key
		}
		if idx := strings.Index(name, "("); idx >= 0 {
			out[strings.TrimSpace(name[:idx])] = key
		}
		if strings.Contains(keyClean, " ") {
			out[keyClean] = key
		}
		if strings.HasSuffix(keyClean, " fracture") {
			out[strings.TrimSuffix(keyClean, " fracture")] = key
		}
		for _, suffix := range []string{" infection", " fever", " stones"} {
			if strings.Contains(name, suffix) {
				out[strings.TrimSpace(strings.ReplaceAll(name, suffix, ""))] = key
			}
		}
	}
	return out
}

// Lookup resolves a free-text diagnosis to a disease profile. Resolution is
// case-insensitive substring matching over the alias table, longest alias
// first, falling back to the underscore-joined form as a direct key. The
// second return is false when no profile matches.
func (b *Base) Lookup(diagnosis string) (domain.DiseaseProfile, bool) {
	normalized := strings.ToLower(strings.TrimSpace(diagnosis))
	if normalized == "" {
		return domain.DiseaseProfile{}, false
	}
	for _, a := range b.aliases {
		if strings.Contains(normalized, a.Phrase) {
			p, ok := b.profiles[a.Key]
			return p, ok
		}
	}
	p, ok := b.profiles[strings.ReplaceAll(normalized, " ", "_")]
	return p, ok
}

// Profile returns the profile for an exact disease key.
func (b *Base) Profile(key string) (domain.DiseaseProfile, bool) {
	p, ok := b.profiles[key]
	return p, ok
}

// Profiles returns all catalog profiles sorted by key.
func (b *Base) Profiles() []domain.DiseaseProfile {
	out := make([]domain.DiseaseProfile, 0, len(b.profiles))
	for _, p := range b.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// DiseaseNames returns the display names of all supported diseases.
func (b *Base) DiseaseNames() []string {
	names := make([]string, 0, len(b.profiles))
	for _, p := range b.Profiles() {
		names = append(names, p.Name)
	}
	return names
}

// CoverageRules returns the coverage table for a plan tier, defaulting to the
// basic plan when the tier is unknown.
func (b *Base) CoverageRules(plan domain.PlanTier) domain.CoverageRules {
	if rules, ok := b.coverage[plan]; ok {
		return rules
	}
	return b.coverage[domain.PlanBasic]
}

// TreatmentGuidelines returns the standard cost reference tables.
func (b *Base) TreatmentGuidelines() Guidelines {
	return b.guidelines
}
