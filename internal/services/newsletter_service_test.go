package services

import (
	"encoding/json"
	"testing"

	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNewsletterService(f *fixture) *NewsletterService {
	return NewNewsletterService(f.db, f.perms, NewRenderer(), NewDraftGenerator(nil, 0))
}

func TestNewsletterCreate_Permissions(t *testing.T) {
	f := newFixture(t)
	svc := newNewsletterService(f)
	group := f.group(t, "Platform")

	groupAdmin := f.user(t, "gad", models.RoleUser)
	f.member(t, group, groupAdmin, models.GroupAdminRole)
	contributor := f.user(t, "con", models.RoleUser)
	f.member(t, group, contributor, models.DefaultRoleInGroup)
	super := f.user(t, "sup", models.RoleSuperAdmin)

	created, err := svc.Create(groupAdmin, &dto.NewsletterCreateRequest{Title: "Weekly", GroupID: group.ID})
	require.NoError(t, err)
	assert.Equal(t, models.NewsletterDraft, created.Status)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, groupAdmin.ID, *created.CreatedBy)

	_, err = svc.Create(super, &dto.NewsletterCreateRequest{Title: "Monthly", GroupID: group.ID, Status: models.NewsletterCollecting})
	require.NoError(t, err)

	_, err = svc.Create(contributor, &dto.NewsletterCreateRequest{Title: "Nope", GroupID: group.ID})
	assert.ErrorIs(t, err, ErrGroupAdmin)

	_, err = svc.Create(super, &dto.NewsletterCreateRequest{Title: "Orphan", GroupID: 999})
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestNewsletterList_Filters(t *testing.T) {
	f := newFixture(t)
	svc := newNewsletterService(f)
	platform := f.group(t, "Platform")
	sales := f.group(t, "Sales")
	author := f.user(t, "aut", models.RoleUser)

	weekly := f.newsletter(t, platform, "Weekly")
	monthly := f.newsletter(t, platform, "Monthly")
	require.NoError(t, f.db.Model(monthly).Updates(map[string]interface{}{"status": models.NewsletterPublished, "period": "2024-03"}).Error)
	salesNews := f.newsletter(t, sales, "Sales news")

	// Two contributions to the same newsletter must not duplicate it.
	f.contribution(t, weekly, author, models.ContributionSuccess, models.ContributionSubmitted, "a", "a")
	f.contribution(t, weekly, author, models.ContributionFail, models.ContributionSubmitted, "b", "b")
	f.contribution(t, salesNews, author, models.ContributionInfo, models.ContributionSubmitted, "c", "c")

	all, err := svc.List(dto.NewsletterFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, salesNews.ID, all[0].ID)

	byGroup, err := svc.List(dto.NewsletterFilter{GroupID: ptr(platform.ID)})
	require.NoError(t, err)
	assert.Len(t, byGroup, 2)

	published := models.NewsletterPublished
	byStatus, err := svc.List(dto.NewsletterFilter{Status: &published, Period: ptr("2024-03")})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, monthly.ID, byStatus[0].ID)

	byUser, err := svc.List(dto.NewsletterFilter{UserID: ptr(author.ID)})
	require.NoError(t, err)
	require.Len(t, byUser, 2)

	combined, err := svc.List(dto.NewsletterFilter{UserID: ptr(author.ID), GroupID: ptr(platform.ID)})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, weekly.ID, combined[0].ID)
}

func TestNewsletterUpdate(t *testing.T) {
	f := newFixture(t)
	svc := newNewsletterService(f)
	super := f.user(t, "sup", models.RoleSuperAdmin)
	newsletter := f.newsletter(t, f.group(t, "Platform"), "Weekly")

	updated, err := svc.Update(newsletter.ID, super, &dto.NewsletterUpdateRequest{
		Period:       ptr("2024-W10"),
		LayoutConfig: json.RawMessage(`{"columns":2}`),
		RenderedHTML: ptr(`<p>Hello<script>x()</script></p>`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Weekly", updated.Title)
	assert.Equal(t, "2024-W10", *updated.Period)
	assert.JSONEq(t, `{"columns":2}`, string(updated.LayoutConfig))
	assert.Equal(t, "<p>Hello</p>", *updated.RenderedHTML)

	_, err = svc.Update(newsletter.ID, super, &dto.NewsletterUpdateRequest{LayoutConfig: json.RawMessage(`[1,2]`)})
	assert.ErrorIs(t, err, ErrInvalidLayout)

	kept, err := svc.Update(newsletter.ID, super, &dto.NewsletterUpdateRequest{LayoutConfig: json.RawMessage(`null`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":2}`, string(kept.LayoutConfig))

	outsider := f.user(t, "out", models.RoleUser)
	_, err = svc.Update(newsletter.ID, outsider, &dto.NewsletterUpdateRequest{Title: ptr("Hijack")})
	assert.ErrorIs(t, err, ErrNewsletterAdmin)
}

func TestNewsletterPublishAndLayout(t *testing.T) {
	f := newFixture(t)
	svc := newNewsletterService(f)
	editor := f.user(t, "edt", models.RoleUser)
	newsletter := f.newsletter(t, f.group(t, "Platform"), "Weekly")
	f.grant(t, newsletter, editor)

	published, err := svc.Publish(newsletter.ID, editor)
	require.NoError(t, err)
	assert.Equal(t, models.NewsletterPublished, published.Status)

	again, err := svc.Publish(newsletter.ID, editor)
	require.NoError(t, err)
	assert.Equal(t, models.NewsletterPublished, again.Status)

	withLayout, err := svc.SetLayout(newsletter.ID, editor, []byte(` {"blocks":[]} `))
	require.NoError(t, err)
	assert.JSONEq(t, `{"blocks":[]}`, string(withLayout.LayoutConfig))

	_, err = svc.SetLayout(newsletter.ID, editor, []byte(`"text"`))
	assert.ErrorIs(t, err, ErrInvalidLayout)

	_, err = svc.Publish(999, editor)
	assert.ErrorIs(t, err, ErrNewsletterNotFound)
}

func TestNewsletterDelete_Cascades(t *testing.T) {
	f := newFixture(t)
	svc := newNewsletterService(f)
	super := f.user(t, "sup", models.RoleSuperAdmin)
	author := f.user(t, "aut", models.RoleUser)
	group := f.group(t, "Platform")
	newsletter := f.newsletter(t, group, "Weekly")
	f.grant(t, newsletter, author)
	f.contribution(t, newsletter, author, models.ContributionInfo, models.ContributionSubmitted, "t", "c")

	assert.ErrorIs(t, svc.Delete(newsletter.ID, f.user(t, "out", models.RoleUser)), ErrPermissionDenied)
	require.NoError(t, svc.Delete(newsletter.ID, super))

	var contributions, grants int64
	require.NoError(t, f.db.Model(&models.Contribution{}).Count(&contributions).Error)
	require.NoError(t, f.db.Model(&models.NewsletterAdmin{}).Count(&grants).Error)
	assert.Zero(t, contributions)
	assert.Zero(t, grants)

	_, err := svc.Get(newsletter.ID)
	assert.ErrorIs(t, err, ErrNewsletterNotFound)
	assert.NoError(t, NewGroupService(f.db).Delete(group.ID))
}

func TestNewsletterAdminGrants(t *testing.T) {
	f := newFixture(t)
	svc := newNewsletterService(f)
	super := f.user(t, "sup", models.RoleSuperAdmin)
	editor := f.user(t, "edt", models.RoleUser)
	newsletter := f.newsletter(t, f.group(t, "Platform"), "Weekly")

	_, err := svc.GrantAdmin(newsletter.ID, editor, editor.ID)
	assert.ErrorIs(t, err, ErrNewsletterAdmin)

	grant, err := svc.GrantAdmin(newsletter.ID, super, editor.ID)
	require.NoError(t, err)
	assert.Equal(t, editor.ID, grant.UserID)

	_, err = svc.GrantAdmin(newsletter.ID, super, editor.ID)
	assert.ErrorIs(t, err, ErrGrantExists)
	_, err = svc.GrantAdmin(newsletter.ID, super, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	// The grant now lets the editor manage the newsletter itself.
	admins, err := svc.ListAdmins(newsletter.ID, editor)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	require.NotNil(t, admins[0].User)
	assert.Equal(t, editor.Email, admins[0].User.Email)

	require.NoError(t, svc.RevokeAdmin(newsletter.ID, super, editor.ID))
	assert.ErrorIs(t, svc.RevokeAdmin(newsletter.ID, super, editor.ID), ErrGrantNotFound)
	_, err = svc.ListAdmins(newsletter.ID, editor)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
