package models

import "encoding/json"

// Movie is an immutable catalog record. Rows are created at catalog
// ingestion and never mutated by the engine.
type Movie struct {
	ID                  int64  `json:"id"`
	TmdbID              int64  `json:"tmdbId"`
	Title               string `json:"title"`
	Overview            string `json:"overview,omitempty"`
	ProductionCompanies string `json:"productionCompanies,omitempty"` // serialized JSON array
	ReleaseDate         string `json:"releaseDate"`                   // ISO YYYY-MM-DD
	Budget              int64  `json:"budget"`
	Revenue             int64  `json:"revenue"`
	Runtime             int    `json:"runtime"`
	OriginalLanguage    string `json:"originalLanguage,omitempty"`
	Genres              string `json:"genres,omitempty"` // serialized list
	Status              string `json:"status,omitempty"`
}

// ProductionCompany is one entry of a movie's serialized company list.
type ProductionCompany struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// Companies parses the serialized production company list. An empty field
// yields an empty list; a field that does not parse as a JSON array is an
// error so callers can treat malformed data as "no company history".
func (m *Movie) Companies() ([]ProductionCompany, error) {
	if m.ProductionCompanies == "" {
		return nil, nil
	}
	var companies []ProductionCompany
	if err := json.Unmarshal([]byte(m.ProductionCompanies), &companies); err != nil {
		return nil, err
	}
	return companies, nil
}
