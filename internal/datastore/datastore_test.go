package datastore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fitreport/internal/database"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	_, err = database.SeedPositions(context.Background(), db)
	require.NoError(t, err)
	return New(db)
}

func uintPtr(v uint) *uint { return &v }

func TestTable_InsertSelectOrdering(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	users := From[database.User](c)

	require.NoError(t, users.Insert(ctx, &database.User{UserID: "lee02", Name: "이", PositionID: uintPtr(6), Password: "x", Status: "active"}))
	require.NoError(t, users.Insert(ctx, &database.User{UserID: "kim01", Name: "김", PositionID: uintPtr(1), Password: "x", Status: "active"}))

	rows, err := users.Select(ctx, Query{
		Columns: []string{"id", "user_id", "name", "position_id"},
		Orders:  []Order{Asc("position_id"), Desc("created_at")},
		Preload: map[string][]string{"Position": {"id", "name", "level"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "kim01", rows[0].UserID)
	require.NotNil(t, rows[0].Position)
	assert.Equal(t, "대표", rows[0].Position.Name)
	assert.Empty(t, rows[0].Password)
}

func TestTable_FirstNotFound(t *testing.T) {
	c := newTestClient(t)
	_, err := From[database.User](c).First(context.Background(), Query{Filters: []Filter{Eq("user_id", "nobody1")}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTable_InsertDuplicate(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	users := From[database.User](c)

	require.NoError(t, users.Insert(ctx, &database.User{UserID: "dup01", Name: "a", Password: "x"}))
	err := users.Insert(ctx, &database.User{UserID: "dup01", Name: "b", Password: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)

	exists, err := users.Exists(ctx, Eq("user_id", "dup01"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTable_UpdateAndDelete(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	docs := From[database.Document](c)

	doc := database.Document{UserID: "kim01", Title: "계약서", Status: "waiting"}
	require.NoError(t, docs.Insert(ctx, &doc))

	updated, err := docs.Update(ctx, map[string]any{"status": "in_progress"}, Eq("id", doc.ID))
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, "in_progress", updated[0].Status)

	n, err := docs.Count(ctx, Eq("status", "in_progress"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	deleted, err := docs.Delete(ctx, Eq("id", doc.ID))
	require.NoError(t, err)
	assert.Len(t, deleted, 1)

	n, err = docs.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTable_RequiresFilter(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	docs := From[database.Document](c)

	_, err := docs.Update(ctx, map[string]any{"status": "x"})
	assert.ErrorIs(t, err, ErrMissingFilter)
	_, err = docs.Delete(ctx)
	assert.ErrorIs(t, err, ErrMissingFilter)
}
