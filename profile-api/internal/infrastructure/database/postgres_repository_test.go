package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsConnString(t *testing.T) {
	opts := Options{Host: "db", Port: 5432, User: "profile", Password: "secret", Database: "digital_profile"}
	assert.Equal(t, "postgres://profile:secret@db:5432/digital_profile?sslmode=disable", opts.connString())

	opts.SSLMode = "require"
	assert.Contains(t, opts.connString(), "sslmode=require")
}

func TestSchemaDeclaresBothTables(t *testing.T) {
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS profile_records")
	assert.Contains(t, schema, "UNIQUE (dataset, unit_key)")
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS profile_reports")
}
