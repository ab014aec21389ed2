// Package infra_postgres_deck is the read-only card catalog collaborator.
// The engine never writes here; decks are seeded out of band.
package infra_postgres_deck

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/quipstack/core/internal/model"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type cardDTO struct {
	ID     string `db:"id"`
	DeckID string `db:"deck_id"`
	Kind   string `db:"kind"`
	Text   string `db:"text"`
}

type deckDTO struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

func (d *Driver) ListCards(ctx context.Context, deckID string, kind model.CardKind, limit int) ([]model.Card, error) {
	var rows []cardDTO

	query := `
		SELECT id, deck_id, kind, text
		FROM cards
		WHERE deck_id = $1 AND kind = $2
		ORDER BY id
	`
	args := []any{deckID, kind}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	if err := d.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	cards := make([]model.Card, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, model.Card{
			ID:     r.ID,
			DeckID: r.DeckID,
			Kind:   r.Kind,
			Text:   r.Text,
		})
	}
	return cards, nil
}

func (d *Driver) Decks(ctx context.Context) ([]model.Deck, error) {
	var rows []deckDTO

	query := `
		SELECT id, name
		FROM decks
		ORDER BY name
	`
	if err := d.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	decks := make([]model.Deck, 0, len(rows))
	for _, r := range rows {
		decks = append(decks, model.Deck{ID: r.ID, Name: r.Name})
	}
	return decks, nil
}
