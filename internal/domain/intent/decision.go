package intent

// Path records how a decision was reached.
type Path string

// Classification paths.
const (
	PathEmbedding Path = "embedding"
	PathKeyword   Path = "keyword"
)

// ModeScore is the similarity of a query to one mode's exemplar.
type ModeScore struct {
	Mode  Mode
	Score float64
}

// Decision is the outcome of intent classification.
type Decision struct {
	Mode       Mode
	Confidence float64
	// Scores is ranked descending; empty on the keyword path.
	Scores []ModeScore
	Path   Path
}

// Topic carries the topical "asks for" signals derived from a query.
// They steer the scorer's strong attractor/repeller bonuses.
type Topic struct {
	AsksFinance   bool
	AsksRomance   bool
	AsksMythology bool
}
