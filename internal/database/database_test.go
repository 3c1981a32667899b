package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017/agora", "agora"},
		{"mongodb://localhost:27017/social_dev?retryWrites=true", "social_dev"},
		{"mongodb+srv://u:p@cluster0.example.net/?retryWrites=true", "agora"},
		{"mongodb://localhost:27017", "agora"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, databaseName(tt.uri), tt.uri)
	}
}
