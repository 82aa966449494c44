package services

import (
	"sync"
	"testing"

	"github.com/newsroom-tools/newsletter-backend/internal/database/dbtest"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "correct-horse"

var (
	testHashOnce sync.Once
	testHash     string
)

// passwordHash returns a low-cost hash of testPassword shared by all fixtures.
func passwordHash(t *testing.T) string {
	t.Helper()
	testHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		testHash = string(h)
	})
	return testHash
}

type fixture struct {
	db    *gorm.DB
	perms *Permissions
}

func newFixture(t *testing.T, superAdminEmails ...string) *fixture {
	t.Helper()
	db := dbtest.New(t)
	return &fixture{db: db, perms: NewPermissions(db, superAdminEmails)}
}

func (f *fixture) user(t *testing.T, trigram string, role models.GlobalRole) *models.User {
	t.Helper()
	u := &models.User{
		Email:              trigram + "@corp.test",
		Trigram:            trigram,
		Name:               trigram,
		PasswordHash:       passwordHash(t),
		GlobalRole:         role,
		IsActive:           true,
		MustChangePassword: true,
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) group(t *testing.T, name string) *models.Group {
	t.Helper()
	g := &models.Group{Name: name}
	require.NoError(t, f.db.Create(g).Error)
	return g
}

func (f *fixture) member(t *testing.T, g *models.Group, u *models.User, role string) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.GroupMembership{GroupID: g.ID, UserID: u.ID, RoleInGroup: role}).Error)
}

func (f *fixture) newsletter(t *testing.T, g *models.Group, title string) *models.Newsletter {
	t.Helper()
	n := &models.Newsletter{Title: title, GroupID: g.ID, Status: models.NewsletterDraft}
	require.NoError(t, f.db.Create(n).Error)
	return n
}

func (f *fixture) grant(t *testing.T, n *models.Newsletter, u *models.User) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.NewsletterAdmin{NewsletterID: n.ID, UserID: u.ID}).Error)
}

func (f *fixture) contribution(t *testing.T, n *models.Newsletter, u *models.User, typ models.ContributionType, status models.ContributionStatus, title, content string) *models.Contribution {
	t.Helper()
	c := &models.Contribution{
		NewsletterID: n.ID,
		UserID:       u.ID,
		Type:         typ,
		Title:        title,
		Content:      content,
		Status:       status,
	}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func ptr[T any](v T) *T { return &v }
