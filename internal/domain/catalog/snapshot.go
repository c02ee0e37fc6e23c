package catalog

import "time"

// Snapshot is an immutable (books, authors) pair with its fetch time.
// It is swapped as a whole; readers never see a partially updated pair.
type Snapshot struct {
	Books     []Book
	Authors   []Author
	FetchedAt time.Time
}

// Fresh reports whether both collections are populated and the snapshot is younger than ttl.
func (s *Snapshot) Fresh(now time.Time, ttl time.Duration) bool {
	if s == nil || len(s.Books) == 0 || len(s.Authors) == 0 {
		return false
	}
	return now.Sub(s.FetchedAt) < ttl
}

// Categories returns every distinct category name in catalog order.
func (s *Snapshot) Categories() []string {
	return CategoryVocabulary(s.Books)
}

// CategoryVocabulary returns the distinct category names across books, in first-seen order.
func CategoryVocabulary(books []Book) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range books {
		for _, c := range books[i].Categories {
			if c == "" {
				continue
			}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
