// Package types defines the entity types, the backend lifecycle interface,
// configuration and standard errors for holocron.
//
// A Movie and a Character mirror one row of the movies and characters tables
// of the Star Wars sample dataset. Both fixture variants map onto the same
// structs; the variant only decides how columns are spelled and how booleans
// are stored.
package types
