package services

import (
	"encoding/json"
	"testing"

	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewTemplateService(f.db, f.perms)
	admin := f.user(t, "adm", models.RoleAdmin)
	user := f.user(t, "usr", models.RoleUser)

	_, err := svc.Create(user, &dto.TemplateCreateRequest{Name: "Classic"})
	assert.ErrorIs(t, err, ErrAdminRequired)

	created, err := svc.Create(admin, &dto.TemplateCreateRequest{Name: "Classic", LayoutConfig: json.RawMessage(`{"columns":1}`)})
	require.NoError(t, err)

	_, err = svc.Create(admin, &dto.TemplateCreateRequest{Name: "Classic"})
	assert.ErrorIs(t, err, ErrTemplateExists)

	_, err = svc.Create(admin, &dto.TemplateCreateRequest{Name: "Broken", LayoutConfig: json.RawMessage(`42`)})
	assert.ErrorIs(t, err, ErrInvalidLayout)

	// Reading is open to every actor.
	listed, err := svc.List()
	require.NoError(t, err)
	require.Len(t, listed, 1)

	updated, err := svc.Update(created.ID, admin, &dto.TemplateUpdateRequest{Description: ptr("One column")})
	require.NoError(t, err)
	assert.Equal(t, "Classic", updated.Name)
	assert.JSONEq(t, `{"columns":1}`, string(updated.LayoutConfig))
	assert.Equal(t, "One column", *updated.Description)

	_, err = svc.Update(created.ID, user, &dto.TemplateUpdateRequest{Name: ptr("Mine")})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	assert.ErrorIs(t, svc.Delete(created.ID, user), ErrAdminRequired)
	require.NoError(t, svc.Delete(created.ID, admin))
	assert.ErrorIs(t, svc.Delete(created.ID, admin), ErrTemplateNotFound)
	_, err = svc.Get(created.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}
