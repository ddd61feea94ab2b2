package model

// Pest is a row of the reference catalog used by the feedback
// dropdown. Entries are not owned by any account and are read-only
// for end users; they are maintained by seed migrations.
//
// The localized name columns hold translations for the supported
// non-default locales. Lookup falls back to CommonName whenever a
// localized column is empty.
type Pest struct {
	ID             uint64  // pests.id
	CommonName     string  // pests.common_name
	ScientificName *string // pests.scientific_name (nullable)
	Category       *string // pests.category (insect, disease, fungal)
	Description    *string // pests.description (nullable)
	NameES         *string // pests.name_es (Spanish)
	NameHI         *string // pests.name_hi (Hindi)
	NameSW         *string // pests.name_sw (Swahili)
}
