package resolve

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/stringutil"
)

// synonymsData is the curated short-form table, kept as a versionable data
// asset so the table can grow without touching matching logic.
//
//go:embed synonyms.json
var synonymsData []byte

type synonymEntry struct {
	Key       string `json:"key"`
	Expansion string `json:"expansion"`
}

// Synonyms maps normalized short forms to canonical course-name fragments.
// Entries keep insertion order: the first satisfying match wins.
type Synonyms struct {
	entries []synonymEntry
	byKey   map[string]string
}

// LoadSynonyms parses a synonym table from JSON.
func LoadSynonyms(data []byte) (*Synonyms, error) {
	var entries []synonymEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("synonyms: parse: %w", err)
	}

	byKey := make(map[string]string, len(entries))
	for _, e := range entries {
		key := stringutil.Normalize(e.Key)
		if key == "" {
			continue
		}
		// First entry wins for duplicate keys.
		if _, exists := byKey[key]; !exists {
			byKey[key] = stringutil.Normalize(e.Expansion)
		}
	}
	return &Synonyms{entries: entries, byKey: byKey}, nil
}

// DefaultSynonyms loads the embedded synonym table.
func DefaultSynonyms() *Synonyms {
	syns, err := LoadSynonyms(synonymsData)
	if err != nil {
		// The embedded table is validated by tests; a parse failure here
		// means a broken build, so an empty table is the safest fallback.
		return &Synonyms{byKey: map[string]string{}}
	}
	return syns
}

// Lookup returns the normalized expansion for a normalized key.
func (s *Synonyms) Lookup(key string) (string, bool) {
	expansion, ok := s.byKey[stringutil.Normalize(key)]
	return expansion, ok
}

// Len returns the number of distinct keys.
func (s *Synonyms) Len() int {
	return len(s.byKey)
}
