package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/auth-service/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{
		DBUser: "auth",
		DBPass: "s3cret",
		DBHost: "db.internal",
		DBPort: "3306",
		DBName: "auth_service",
	}
	assert.Equal(t,
		"auth:s3cret@tcp(db.internal:3306)/auth_service?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn(cfg))
}

func TestDSNEmptyPassword(t *testing.T) {
	cfg := config.Config{
		DBUser: "auth",
		DBHost: "localhost",
		DBPort: "3306",
		DBName: "auth_service",
	}
	// no colon separator when the password is empty
	assert.Equal(t,
		"auth@tcp(localhost:3306)/auth_service?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn(cfg))
}
