package intent

// Mode is the classified purpose of a query.
type Mode string

// Intent modes in exemplar declaration order.
const (
	Greeting  Mode = "greeting"
	Author    Mode = "author"
	Price     Mode = "price"
	Character Mode = "character"
	Publisher Mode = "publisher"
	// General covers recommendations and any query without a sharper intent.
	General Mode = "general"
)

// Modes lists every mode in declaration order.
func Modes() []Mode {
	return []Mode{Greeting, Author, Price, Character, Publisher, General}
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	switch m {
	case Greeting, Author, Price, Character, Publisher, General:
		return true
	}
	return false
}
