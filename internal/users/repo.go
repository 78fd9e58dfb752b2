package users

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Profile is the user-visible account record including recommendation
// priorities (1-5 weights for sale, rating and topicality).
type Profile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	SalePriority   int       `json:"salePriority"`
	RatingPriority int       `json:"ratingPriority"`
	TopicPriority  int       `json:"topicPriority"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, sale_priority, rating_priority, topic_priority, created_at
		FROM users
		WHERE id = ?
	`, userID)

	var p Profile
	if err := row.Scan(&p.ID, &p.Username, &p.Email, &p.SalePriority, &p.RatingPriority, &p.TopicPriority, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// PreferencesUpdate carries only the fields the caller wants changed.
type PreferencesUpdate struct {
	SalePriority   *int
	RatingPriority *int
	TopicPriority  *int
}

func (r *Repo) UpdatePreferences(ctx context.Context, userID string, upd PreferencesUpdate) (*Profile, error) {
	var sets []string
	var args []any

	if upd.SalePriority != nil {
		sets = append(sets, "sale_priority = ?")
		args = append(args, *upd.SalePriority)
	}
	if upd.RatingPriority != nil {
		sets = append(sets, "rating_priority = ?")
		args = append(args, *upd.RatingPriority)
	}
	if upd.TopicPriority != nil {
		sets = append(sets, "topic_priority = ?")
		args = append(args, *upd.TopicPriority)
	}

	if len(sets) > 0 {
		args = append(args, userID)
		res, err := r.DB.ExecContext(ctx, `
			UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?
		`, args...)
		if err != nil {
			return nil, fmt.Errorf("update preferences: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return nil, fmt.Errorf("update preferences: user not found")
		}
	}

	return r.GetProfile(ctx, userID)
}
