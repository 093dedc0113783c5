package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrProjectNotFound = errors.New("project not found")
)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// returns the project only when it belongs to ownerID
func (r *Repository) Get(ctx context.Context, projectID, ownerID string) (*Project, error) {
	var p Project

	err := r.db.QueryRow(ctx, queryGet, projectID, ownerID).Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &p, nil
}

func (r *Repository) List(ctx context.Context, ownerID string) ([]Project, error) {
	rows, err := r.db.Query(ctx, queryList, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return scanProjects(rows)
}

// every project across owners, for batch tooling
func (r *Repository) ListAll(ctx context.Context) ([]Project, error) {
	rows, err := r.db.Query(ctx, queryListAll)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return scanProjects(rows)
}

func scanProjects(rows pgx.Rows) ([]Project, error) {
	defer rows.Close()

	projects := []Project{}

	for rows.Next() {
		var p Project

		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}

		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}
