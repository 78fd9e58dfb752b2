package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gameshelf/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type ListQuery struct {
	Q      string // keyword search in title
	Limit  int
	Offset int
}

const gameColumns = `id, title, image_url, rating, price, discount_rate, is_on_sale, created_at`

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Game, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE id = ?
	`, id)
	return scanGame(row)
}

// FindByTitle does an exact-equality lookup. Titles differing only by
// punctuation or edition suffixes are distinct catalog rows; known
// limitation, kept deliberately.
func (r *Repo) FindByTitle(ctx context.Context, title string) (*models.Game, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE title = ?
	`, title)
	return scanGame(row)
}

func (r *Repo) Create(ctx context.Context, g *models.Game) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO games (id, title, image_url, rating, price, discount_rate, is_on_sale)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.Title, g.ImageURL, g.Rating, g.Price, g.DiscountRate, g.IsOnSale)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

// UpdateMetadata heals a row in place with externally resolved metadata.
func (r *Repo) UpdateMetadata(ctx context.Context, id, title, imageURL string, rating float64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE games
		SET title = ?, image_url = ?, rating = ?
		WHERE id = ?
	`, title, imageURL, rating, id)
	if err != nil {
		return fmt.Errorf("update game metadata: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("update game metadata: game not found")
	}
	return nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Game, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	out := make([]models.Game, 0, q.Limit)
	for rows.Next() {
		g, err := scanGameRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + gameColumns + ` FROM games`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM games`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Q) != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(q.Q))+"%")
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY title ASC LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row *sql.Row) (*models.Game, error) {
	g, err := scanGameFrom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return g, err
}

func scanGameRows(rows *sql.Rows) (*models.Game, error) {
	return scanGameFrom(rows)
}

func scanGameFrom(s rowScanner) (*models.Game, error) {
	var (
		g        models.Game
		imageURL sql.NullString
		onSale   int
	)
	if err := s.Scan(
		&g.ID, &g.Title, &imageURL, &g.Rating, &g.Price, &g.DiscountRate, &onSale, &g.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}
	g.ImageURL = imageURL.String
	g.IsOnSale = onSale != 0
	return &g, nil
}
