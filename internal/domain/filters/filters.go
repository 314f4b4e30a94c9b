package filters

// MovieFilter narrows a watchlist listing. Every field is tri-state:
// nil means "no constraint", so an omitted Watched never turns into watched = false.
type MovieFilter struct {
	Year      *int32
	Genre     *string
	MinRating *int32
	Watched   *bool
}

// Args returns the filter values in the positional order used by the SQL stores.
func (f MovieFilter) Args() []any {
	return []any{f.Year, f.Genre, f.MinRating, f.Watched}
}
