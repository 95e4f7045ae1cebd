package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ListRoles returns the roles granted to userID
func (s *Storage) ListRoles(ctx context.Context, userID string) ([]string, error) {
	var roles pq.StringArray
	query := `SELECT COALESCE(array_agg(role::text ORDER BY role), '{}') FROM user_roles WHERE user_id = $1`
	if err := s.db.GetContext(ctx, &roles, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return []string(roles), nil
}

// SaveProfile upserts the profile and grants role in one transaction
func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile, role string) error {
	return s.client.WithTx(ctx, func(tx *sqlx.Tx) error {
		profileQuery := `
			INSERT INTO profiles (user_id, full_name, email, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			ON CONFLICT (user_id) DO UPDATE
			SET full_name = EXCLUDED.full_name,
			    email = EXCLUDED.email,
			    updated_at = NOW()
		`
		if _, err := tx.ExecContext(ctx, profileQuery, profile.UserID, profile.FullName, profile.Email); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}

		roleQuery := `
			INSERT INTO user_roles (user_id, role)
			VALUES ($1, $2)
			ON CONFLICT (user_id, role) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, roleQuery, profile.UserID, role); err != nil {
			return fmt.Errorf("failed to grant role: %w", err)
		}

		return nil
	})
}

// GetProfile returns the profile with its roles
func (s *Storage) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	query := `
		SELECT
			p.user_id, p.full_name, p.email, p.created_at,
			COALESCE(array_agg(r.role::text ORDER BY r.role) FILTER (WHERE r.role IS NOT NULL), '{}') AS roles
		FROM profiles p
		LEFT JOIN user_roles r ON r.user_id = p.user_id
		WHERE p.user_id = $1
		GROUP BY p.user_id
	`

	var profile model.Profile
	if err := s.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}
