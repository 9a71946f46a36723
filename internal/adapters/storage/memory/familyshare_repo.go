package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ipnow2025/medinote/internal/domain/familyshare"
)

type familyShareRepo struct {
	mu   sync.RWMutex
	byID map[string]familyshare.Grant
}

func NewFamilyShareRepo() familyshare.Repository {
	return &familyShareRepo{
		byID: make(map[string]familyshare.Grant),
	}
}

func (r *familyShareRepo) Create(ctx context.Context, g familyshare.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(g.ID) == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; exists {
		return errors.New("grant already exists")
	}
	r.byID[g.ID] = g
	return nil
}

func (r *familyShareRepo) Update(ctx context.Context, g familyshare.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(g.ID) == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; !exists {
		return ErrNotFound
	}
	r.byID[g.ID] = g
	return nil
}

func (r *familyShareRepo) GetByID(ctx context.Context, id string) (familyshare.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return familyshare.Grant{}, ErrNotFound
	}
	return g, nil
}

func (r *familyShareRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]familyshare.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]familyshare.Grant, 0)
	for _, g := range r.byID {
		if g.OwnerUserID == ownerUserID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *familyShareRepo) ListByGrantee(ctx context.Context, granteeUserID string) ([]familyshare.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]familyshare.Grant, 0)
	for _, g := range r.byID {
		if g.GranteeUserID == granteeUserID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *familyShareRepo) GetActiveGrant(ctx context.Context, ownerUserID, granteeUserID string) (familyshare.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winner familyshare.Grant
	has := false

	for _, g := range r.byID {
		if g.OwnerUserID != ownerUserID || g.GranteeUserID != granteeUserID {
			continue
		}
		if g.Status != familyshare.StatusActive {
			continue
		}
		if !has || g.UpdatedAt.After(winner.UpdatedAt) {
			winner = g
			has = true
		}
	}

	if !has {
		return familyshare.Grant{}, ErrNotFound
	}
	return winner, nil
}
