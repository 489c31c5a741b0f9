// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"testing"
	"time"

	"socialshop/internal/config"
	"socialshop/internal/db"
	"socialshop/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := db.Open(config.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func CreateUser(t *testing.T, conn *gorm.DB, id, email, name string) models.User {
	t.Helper()
	user := models.User{ID: id, Email: email, Name: name, Image: "/img/" + id + ".png"}
	require.NoError(t, conn.Create(&user).Error)
	return user
}

// CreatePost inserts a post with an explicit creation time so ordering is
// deterministic.
func CreatePost(t *testing.T, conn *gorm.DB, userID, title string, createdAt time.Time) models.Post {
	t.Helper()
	post := models.Post{UserID: userID, Title: title, Content: title + " body", CreatedAt: createdAt}
	require.NoError(t, conn.Create(&post).Error)
	return post
}

func CreateComment(t *testing.T, conn *gorm.DB, postID, userID, content string, createdAt time.Time) models.Comment {
	t.Helper()
	comment := models.Comment{PostID: postID, UserID: userID, Content: content, CreatedAt: createdAt}
	require.NoError(t, conn.Create(&comment).Error)
	return comment
}

func CreateLike(t *testing.T, conn *gorm.DB, postID, userID string) models.Like {
	t.Helper()
	like := models.Like{PostID: postID, UserID: userID}
	require.NoError(t, conn.Create(&like).Error)
	return like
}
