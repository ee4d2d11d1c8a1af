package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-assistant-go/internal/model"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	db, err := Open("sqlite", "file:database_test?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	// 重复迁移不应报错
	require.NoError(t, AutoMigrate(db))

	for _, table := range []any{&model.Document{}, &model.Question{}, &model.Session{}, &model.Attempt{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasIndex(&model.Question{}, "idx_document_question_hash"))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "x")
	assert.Error(t, err)
}
