package catalog

// Author is an entry of the authors collection.
type Author struct {
	ID        string
	Name      string
	PenName   string
	Bio       string
	BookCount int
}
