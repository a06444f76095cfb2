package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestSeedPositions_OnlyOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	n, err := SeedPositions(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultPositions), n)

	n, err = SeedPositions(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, n)

	var positions []Position
	require.NoError(t, db.Order("level").Find(&positions).Error)
	require.Len(t, positions, 6)
	assert.Equal(t, "대표", positions[0].Name)
	assert.Equal(t, 1, positions[0].Level)
}

func TestSeedRepresentative(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, err := SeedPositions(ctx, db)
	require.NoError(t, err)

	user, err := SeedRepresentative(ctx, db, "admin01", "관리자", "secret")
	require.NoError(t, err)
	assert.True(t, user.IsRepresentative())
	assert.Equal(t, UserStatusActive, user.Status)

	_, err = SeedRepresentative(ctx, db, "admin01", "관리자", "secret")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestDocument_AttachedFilesRoundTrip(t *testing.T) {
	db := newTestDB(t)

	doc := Document{
		UserID:        "kim01",
		Title:         "재직증명서",
		SubmittedDate: "25-03-01",
		AttachedFiles: []AttachedFile{{Name: "a.pdf", Path: "kim01/a.pdf", Size: 12}},
	}
	require.NoError(t, db.Create(&doc).Error)

	var got Document
	require.NoError(t, db.First(&got, doc.ID).Error)
	assert.Equal(t, "waiting", got.Status)
	assert.Equal(t, "not_started", got.ProgressStatus)
	require.Len(t, got.AttachedFiles, 1)
	assert.Equal(t, "kim01/a.pdf", got.AttachedFiles[0].Path)
}
