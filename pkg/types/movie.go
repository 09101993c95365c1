package types

// Movie is one row of the movies table.
type Movie struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Episode     *string `json:"episode"`      // Nil for films outside the numbered saga.
	Director    string  `json:"director"`
	ReleaseYear *int    `json:"release_year"` // released_year in the generic variant.
	Chronology  int     `json:"chronology"`   // In-universe order, 1..9.
}

// Validate checks the row-level invariants of a movie.
func (m Movie) Validate() error {
	if m.Name == "" {
		return ErrInvalidName
	}
	return nil
}
