package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type widget struct {
	ID   string `gorm:"primaryKey"`
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:repo_base?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Migrator().DropTable(&widget{}))
	require.NoError(t, conn.AutoMigrate(&widget{}))
	return conn
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	//nolint:staticcheck // nil context returns the raw connection
	assert.Same(t, db, base.DB(nil))
}

func TestFindAndDeleteByID(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	ctx := context.Background()
	require.NoError(t, db.Create(&widget{ID: "w1", Name: "first"}).Error)

	got, err := FindByID[widget](ctx, base, "w1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)

	_, err = FindByID[widget](ctx, base, "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, DeleteByID[widget](ctx, base, "w1"))
	assert.True(t, errors.Is(DeleteByID[widget](ctx, base, "w1"), gorm.ErrRecordNotFound))
}
