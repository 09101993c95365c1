package types

// Character is one row of the characters table.
type Character struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	Sex                  *string `json:"sex"`
	CharacterType        string  `json:"character_type"`
	Allegiance           *string `json:"allegiance"`
	FirstAppearedMovieID *int64  `json:"first_appeared_movie_id"`
	HasForce             bool    `json:"has_force"`
	DiedInMovieID        *int64  `json:"died_in_movie_id"`
}

// Alive reports whether the character survives every film in the dataset.
func (c Character) Alive() bool {
	return c.DiedInMovieID == nil
}

// Validate checks the row-level invariants of a character. The name column
// is NOT NULL in both variants and the dataset never stores an empty name.
func (c Character) Validate() error {
	if c.Name == "" {
		return ErrInvalidName
	}
	return nil
}

// MovieRefs returns the movie ids the character references, skipping nulls.
func (c Character) MovieRefs() []int64 {
	var refs []int64
	if c.FirstAppearedMovieID != nil {
		refs = append(refs, *c.FirstAppearedMovieID)
	}
	if c.DiedInMovieID != nil {
		refs = append(refs, *c.DiedInMovieID)
	}
	return refs
}
