package compose

import domintent "github.com/JIG555ERA/llm-api/internal/domain/intent"

// Section names an optional part of the answer.
type Section string

// Optional sections.
const (
	SectionQuotes    Section = "quotes"
	SectionTakeaways Section = "takeaways"
	SectionSimilar   Section = "similar"
)

// Layout tells a client how to render the items.
type Layout string

// Layouts per mode.
const (
	LayoutConversation Layout = "conversation"
	LayoutAuthor       Layout = "author_profile"
	LayoutPriceList    Layout = "price_list"
	LayoutStory        Layout = "story"
	LayoutPublisher    Layout = "publisher"
	LayoutList         Layout = "list"
)

var layouts = map[domintent.Mode]Layout{
	domintent.Greeting:  LayoutConversation,
	domintent.Author:    LayoutAuthor,
	domintent.Price:     LayoutPriceList,
	domintent.Character: LayoutStory,
	domintent.Publisher: LayoutPublisher,
	domintent.General:   LayoutList,
}

// Display carries rendering hints alongside the answer.
type Display struct {
	Mode       domintent.Mode `json:"mode"`
	Confidence float64        `json:"confidence"`
	Layout     Layout         `json:"layout"`
	Sections   []Section      `json:"sections"`
}

func layoutFor(mode domintent.Mode) Layout {
	if l, ok := layouts[mode]; ok {
		return l
	}
	return LayoutList
}
