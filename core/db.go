package core

// DBOrdering is a single ORDER BY term, bound from an API "ordering" query
// parameter and applied verbatim by repositories against whitelisted columns.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
