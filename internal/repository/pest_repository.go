package repository

import (
	"context"
	"database/sql"

	"github.com/farmsight/pestscan/internal/i18n"
	"github.com/farmsight/pestscan/internal/model"
)

// PestRepo reads the localized pest reference catalog. The catalog is
// seeded by migrations and exposes no mutation operations to end
// users.
type PestRepo struct{ DB *sql.DB }

func NewPestRepo(db *sql.DB) *PestRepo { return &PestRepo{DB: db} }

// localizedColumn maps each non-default locale to its name column.
// The default locale reads common_name directly. Keeping this as an
// explicit table (instead of formatting "name_"+lang into SQL) ties
// the queryable columns to the supported-locale enum.
var localizedColumn = map[i18n.Locale]string{
	i18n.LocaleES: "name_es",
	i18n.LocaleHI: "name_hi",
	i18n.LocaleSW: "name_sw",
}

// CatalogEntry is the localized list item served to the feedback UI.
type CatalogEntry struct {
	ID             uint64  `json:"id"`
	DisplayName    string  `json:"common_name"`
	ScientificName *string `json:"scientific_name"`
	Category       *string `json:"category"`
}

// List returns the catalog with display names resolved for lang:
// the localized column when present and non-empty, the default
// common name otherwise.
func (r *PestRepo) List(ctx context.Context, lang string) ([]CatalogEntry, error) {
	locale, _ := i18n.Supported(lang)

	nameExpr := "common_name"
	if col, ok := localizedColumn[locale]; ok {
		nameExpr = "COALESCE(NULLIF(" + col + ", ''), common_name)"
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, "+nameExpr+", scientific_name, category FROM pests ORDER BY common_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]CatalogEntry, 0)
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.ID, &e.DisplayName, &e.ScientificName, &e.Category); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetByCommonName looks up one catalog row by its default common
// name. Used when validating corrected pest names from feedback.
func (r *PestRepo) GetByCommonName(ctx context.Context, name string) (model.Pest, error) {
	var p model.Pest
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, common_name, scientific_name, category, description, name_es, name_hi, name_sw
		 FROM pests WHERE common_name=? LIMIT 1`, name).
		Scan(&p.ID, &p.CommonName, &p.ScientificName, &p.Category, &p.Description,
			&p.NameES, &p.NameHI, &p.NameSW)
	if err == sql.ErrNoRows {
		return model.Pest{}, ErrNotFound
	}
	return p, err
}
