package types

// Standard table names for Backend.Table.
const (
	MoviesTable     = "movies"
	CharactersTable = "characters"
)

// StandardTableNames lists the fixture tables in load order. Movies come
// first because characters reference them.
var StandardTableNames = []string{
	MoviesTable,
	CharactersTable,
}

// DropOrder lists the fixture tables in the order they must be dropped.
var DropOrder = []string{
	CharactersTable,
	MoviesTable,
}

// IsStandardTable reports whether name is one of the fixture tables.
func IsStandardTable(name string) bool {
	for _, n := range StandardTableNames {
		if n == name {
			return true
		}
	}
	return false
}
