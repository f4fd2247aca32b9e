package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/pkg/identity"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:svc_"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

var adminUser = identity.User{ID: "admin-1", Email: "admin@wakaf.org"}

func withUser(ctx context.Context, user identity.User) context.Context {
	return identity.WithSession(ctx, identity.Session{ID: "sid-" + user.ID, User: user})
}

func adminContext() context.Context {
	return withUser(context.Background(), adminUser)
}

func mustDocument(t *testing.T, value interface{}) models.Document {
	t.Helper()
	doc, err := models.DocumentOf(value)
	require.NoError(t, err)
	return doc
}
