package library

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gameshelf/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Get looks up the unique (user, game, store) ownership row.
func (r *Repo) Get(ctx context.Context, userID, gameID, store string) (*models.UserGame, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, game_id, store, owned_type, purchase_price, created_at
		FROM user_games
		WHERE user_id = ? AND game_id = ? AND store = ?
	`, userID, gameID, store)

	var (
		ug    models.UserGame
		price sql.NullInt64
	)
	if err := row.Scan(&ug.ID, &ug.UserID, &ug.GameID, &ug.Store, &ug.OwnedType, &price, &ug.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get ownership: %w", err)
	}
	ug.PurchasePrice = yenPtr(price)
	return &ug, nil
}

// Register creates the ownership row for (user, game, store), or returns
// models.ErrAlreadyOwned when one exists. Attributes of an existing row are
// never overwritten by a later duplicate attempt, purchase price included.
// A UNIQUE violation from a concurrent request maps to the same duplicate
// signal.
func (r *Repo) Register(ctx context.Context, userID, gameID, store, ownedType string, purchasePrice *int) (*models.UserGame, error) {
	store = models.NormalizeStore(store)
	if strings.TrimSpace(ownedType) == "" {
		ownedType = models.OwnedTypeBookmarklet
	}

	existing, err := r.Get(ctx, userID, gameID, store)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrAlreadyOwned
	}

	ug := models.UserGame{
		ID:            uuid.NewString(),
		UserID:        userID,
		GameID:        gameID,
		Store:         store,
		OwnedType:     ownedType,
		PurchasePrice: purchasePrice,
		CreatedAt:     time.Now().UTC(),
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO user_games (id, user_id, game_id, store, owned_type, purchase_price)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ug.ID, ug.UserID, ug.GameID, ug.Store, ug.OwnedType, nullableYen(ug.PurchasePrice))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, models.ErrAlreadyOwned
		}
		return nil, fmt.Errorf("register ownership: %w", err)
	}
	return &ug, nil
}

func nullableYen(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func yenPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// OwnedGame is an ownership row joined with its catalog entry.
type OwnedGame struct {
	models.Game
	UserGameID    string    `json:"userGameId"`
	Store         string    `json:"store"`
	OwnedType     string    `json:"ownedType"`
	PurchasePrice *int      `json:"purchasePrice,omitempty"`
	AddedAt       time.Time `json:"addedAt"`
}

// ListWithGames returns the user's ownership rows newest-first, each joined
// with the game it references.
func (r *Repo) ListWithGames(ctx context.Context, userID string) ([]OwnedGame, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT ug.id, ug.store, ug.owned_type, ug.purchase_price, ug.created_at,
		       g.id, g.title, g.image_url, g.rating, g.price, g.discount_rate, g.is_on_sale, g.created_at
		FROM user_games ug
		JOIN games g ON g.id = ug.game_id
		WHERE ug.user_id = ?
		ORDER BY ug.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	defer rows.Close()

	var out []OwnedGame
	for rows.Next() {
		var (
			og       OwnedGame
			price    sql.NullInt64
			imageURL sql.NullString
			onSale   int
		)
		if err := rows.Scan(
			&og.UserGameID, &og.Store, &og.OwnedType, &price, &og.AddedAt,
			&og.Game.ID, &og.Game.Title, &imageURL, &og.Game.Rating,
			&og.Game.Price, &og.Game.DiscountRate, &onSale, &og.Game.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan library row: %w", err)
		}
		og.PurchasePrice = yenPtr(price)
		og.Game.ImageURL = imageURL.String
		og.Game.IsOnSale = onSale != 0
		out = append(out, og)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// OwnedTitles returns the distinct lowercased titles the user owns on any
// store, for filtering recommendations.
func (r *Repo) OwnedTitles(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT DISTINCT LOWER(g.title)
		FROM user_games ug
		JOIN games g ON g.id = ug.game_id
		WHERE ug.user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("owned titles: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan owned title: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Delete removes one ownership row belonging to the user.
func (r *Repo) Delete(ctx context.Context, userID, userGameID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM user_games
		WHERE id = ? AND user_id = ?
	`, userGameID, userID)
	if err != nil {
		return false, fmt.Errorf("delete ownership: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
