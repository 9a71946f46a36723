package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ipnow2025/medinote/internal/domain/familyshare"
)

type FamilyShareRepo struct {
	db *sql.DB
}

func NewFamilyShareRepo(db *sql.DB) *FamilyShareRepo {
	return &FamilyShareRepo{db: db}
}

func (r *FamilyShareRepo) Create(ctx context.Context, g familyshare.Grant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO family_grants (
			id, owner_user_id, grantee_user_id,
			relationship, scopes, status,
			created_at, updated_at, revoked_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		g.ID,
		g.OwnerUserID,
		g.GranteeUserID,
		g.Relationship,
		joinScopes(g.Scopes),
		string(g.Status),
		g.CreatedAt,
		g.UpdatedAt,
		toNullTime(g.RevokedAt),
	)
	return err
}

func (r *FamilyShareRepo) Update(ctx context.Context, g familyshare.Grant) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE family_grants
		SET
			relationship = $2,
			scopes = $3,
			status = $4,
			updated_at = $5,
			revoked_at = $6
		WHERE id = $1
	`,
		g.ID,
		g.Relationship,
		joinScopes(g.Scopes),
		string(g.Status),
		g.UpdatedAt,
		toNullTime(g.RevokedAt),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const grantColumns = `
	id, owner_user_id, grantee_user_id,
	relationship, scopes, status,
	created_at, updated_at, revoked_at
`

func (r *FamilyShareRepo) GetByID(ctx context.Context, id string) (familyshare.Grant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return familyshare.Grant{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+grantColumns+`
		FROM family_grants
		WHERE id = $1
	`, id)

	g, err := scanGrant(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return familyshare.Grant{}, ErrNotFound
		}
		return familyshare.Grant{}, err
	}
	return g, nil
}

func (r *FamilyShareRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]familyshare.Grant, error) {
	return r.list(ctx, "owner_user_id", ownerUserID)
}

func (r *FamilyShareRepo) ListByGrantee(ctx context.Context, granteeUserID string) ([]familyshare.Grant, error) {
	return r.list(ctx, "grantee_user_id", granteeUserID)
}

func (r *FamilyShareRepo) list(ctx context.Context, column, value string) ([]familyshare.Grant, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+grantColumns+`
		FROM family_grants
		WHERE `+column+` = $1
		ORDER BY updated_at DESC
	`, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]familyshare.Grant, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *FamilyShareRepo) GetActiveGrant(ctx context.Context, ownerUserID, granteeUserID string) (familyshare.Grant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+grantColumns+`
		FROM family_grants
		WHERE owner_user_id = $1 AND grantee_user_id = $2 AND status = 'active'
		ORDER BY updated_at DESC
		LIMIT 1
	`, ownerUserID, granteeUserID)

	g, err := scanGrant(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return familyshare.Grant{}, ErrNotFound
		}
		return familyshare.Grant{}, err
	}
	return g, nil
}

func scanGrant(row scanner) (familyshare.Grant, error) {
	var g familyshare.Grant
	var scopes, status string
	var revokedAt sql.NullTime

	if err := row.Scan(
		&g.ID,
		&g.OwnerUserID,
		&g.GranteeUserID,
		&g.Relationship,
		&scopes,
		&status,
		&g.CreatedAt,
		&g.UpdatedAt,
		&revokedAt,
	); err != nil {
		return familyshare.Grant{}, err
	}

	g.Status = familyshare.Status(status)
	g.Scopes = splitScopes(scopes)
	if revokedAt.Valid {
		t := revokedAt.Time
		g.RevokedAt = &t
	}
	return g, nil
}

func joinScopes(in []familyshare.Scope) string {
	parts := make([]string, 0, len(in))
	for _, s := range in {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ",")
}

func splitScopes(in string) []familyshare.Scope {
	parts := splitList(in)
	out := make([]familyshare.Scope, 0, len(parts))
	for _, p := range parts {
		out = append(out, familyshare.Scope(p))
	}
	return out
}
