package model

type CardKind = string

const (
	CardPrompt   CardKind = "prompt"
	CardResponse CardKind = "response"
)

// Card lives in the read-only card catalog. The engine never mutates decks.
type Card struct {
	ID     string
	DeckID string
	Kind   CardKind
	Text   string
}

type Deck struct {
	ID   string
	Name string
}
