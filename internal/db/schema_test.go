package db

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Deleting a user must take their issues, likes, comments, official record
// and notifications with them, so every user-side foreign key has to carry
// the cascade.
func TestUserForeignKeysCascade(t *testing.T) {
	re := regexp.MustCompile(`REFERENCES users\(id\)( ON DELETE CASCADE)?`)

	found := 0
	for _, stmt := range schemaStatements {
		for _, match := range re.FindAllString(stmt, -1) {
			found++
			assert.Contains(t, match, "ON DELETE CASCADE", "statement: %s", stmt)
		}
	}
	require.Equal(t, 5, found, "expected user references on issues, officials, notifications, comments and likes")
}

func TestLikeRowsFollowTheirTarget(t *testing.T) {
	re := regexp.MustCompile(`REFERENCES (issues|comments)\(id\) ON DELETE CASCADE`)

	var likesTable string
	for _, stmt := range schemaStatements {
		if regexp.MustCompile(`CREATE TABLE IF NOT EXISTS likes`).MatchString(stmt) {
			likesTable = stmt
		}
	}
	require.NotEmpty(t, likesTable)
	assert.Len(t, re.FindAllString(likesTable, -1), 2)
}
