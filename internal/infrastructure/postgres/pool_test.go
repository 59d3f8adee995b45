package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestDatabaseURLWithIPv4(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"literal IPv4 con puerto", "postgres://u:p@127.0.0.1:6543/malexa", "postgres://u:p@127.0.0.1:6543/malexa"},
		{"literal IPv4 sin puerto", "postgres://u:p@10.0.0.5/malexa?sslmode=disable", "postgres://u:p@10.0.0.5:5432/malexa?sslmode=disable"},
		{"literal IPv6 queda igual", "postgres://u:p@[::1]:5432/malexa", "postgres://u:p@[::1]:5432/malexa"},
		{"no es URL", "host=localhost user=x", "host=localhost user=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, databaseURLWithIPv4(tt.in))
		})
	}
}

func TestResolveIPv4_Literales(t *testing.T) {
	ip, err := resolveIPv4("192.168.1.10")
	assert.NoError(t, err)
	assert.Equal(t, "192.168.1.10", ip)

	_, err = resolveIPv4("::1")
	assert.Error(t, err)
}

func TestClasificacionDeErrores(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(errors.New("23505 en el texto no alcanza")))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40001"}))
	assert.False(t, isRetryable(&pgconn.PgError{Code: "23505"}))
}
