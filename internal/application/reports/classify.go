package reports

import (
	"strings"

	domain "github.com/bryanwahyu/rxscan/internal/domain/reports"
	"github.com/bryanwahyu/rxscan/internal/domain/substances"
)

// Index maps folded names (catalog name and normalized name) to catalog rows.
// The first row claiming a key wins, matching a top-down catalog scan.
type Index struct {
	byKey map[string]substances.Substance
}

func NewIndex(items []substances.Substance) *Index {
	idx := &Index{byKey: make(map[string]substances.Substance, len(items)*2)}
	for _, s := range items {
		for _, name := range []string{s.Name, s.NormalizedName} {
			k := substances.Key(name)
			if k == "" {
				continue
			}
			if _, taken := idx.byKey[k]; !taken {
				idx.byKey[k] = s
			}
		}
	}
	return idx
}

func (i *Index) Len() int { return len(i.byKey) }

// Lookup finds the catalog row for a detected name.
func (i *Index) Lookup(name string) (substances.Substance, bool) {
	s, ok := i.byKey[substances.Key(name)]
	return s, ok
}

// Classify splits detected names into catalog matches and unknown names,
// keeping first-seen order. Each catalog row is reported once; a name that
// resolves to an already reported row is dropped. Unknown names are
// deduplicated on their folded form and keep the spelling first seen.
func Classify(names []string, idx *Index) (known []domain.KnownSubstance, unknown []string) {
	known = []domain.KnownSubstance{}
	unknown = []string{}
	seenKnown := map[string]bool{}
	seenUnknown := map[string]bool{}

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if s, ok := idx.Lookup(name); ok {
			if seenKnown[s.Name] {
				continue
			}
			seenKnown[s.Name] = true
			known = append(known, domain.KnownSubstance{
				Name:        s.Name,
				Category:    s.Category,
				Description: s.Description,
			})
			continue
		}
		k := substances.Key(name)
		if seenUnknown[k] {
			continue
		}
		seenUnknown[k] = true
		unknown = append(unknown, name)
	}
	return known, unknown
}
