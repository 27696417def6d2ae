package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Analysis is one persisted run of the pump analysis for a user.
type Analysis struct {
	ID        int             `json:"id"`
	Site      string          `json:"site"`
	Tag       string          `json:"tag"`
	Summary   json.RawMessage `json:"summary"`
	CreatedAt time.Time       `json:"created_at"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)
	SaveAnalysis(ctx context.Context, userID int, site, tag string, summary json.RawMessage) (int, error)
	ListAnalyses(ctx context.Context, userID int, site, tag string) ([]Analysis, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresDB(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

func (r *PostgresRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresRepository) SaveAnalysis(ctx context.Context, userID int, site, tag string, summary json.RawMessage) (int, error) {
	var id int
	query := `INSERT INTO analyses (user_id, site, tag, summary, created_at)
	          VALUES ($1, $2, $3, $4, now()) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, userID, site, tag, summary).Scan(&id)
	return id, err
}

func (r *PostgresRepository) ListAnalyses(ctx context.Context, userID int, site, tag string) ([]Analysis, error) {
	query := `SELECT id, site, tag, summary, created_at FROM analyses
	          WHERE user_id=$1 AND ($2='' OR site=$2) AND ($3='' OR tag=$3)
	          ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID, site, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var a Analysis
		if err := rows.Scan(&a.ID, &a.Site, &a.Tag, &a.Summary, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
