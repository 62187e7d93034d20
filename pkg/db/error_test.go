package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"record not found", gorm.ErrRecordNotFound, KindNotFound},
		{"wrapped not found", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), KindNotFound},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, KindDuplicate},
		{"pgconn unique", &pgconn.PgError{Code: "23505"}, KindDuplicate},
		{"pq unique", &pq.Error{Code: "23505"}, KindDuplicate},
		{"mysql 1062", errors.New("Error 1062 (23000): Duplicate entry 'ana' for key 'clientes.nombre'"), KindDuplicate},
		{"sqlite unique", errors.New("UNIQUE constraint failed: clientes.nombre"), KindDuplicate},
		{"pgconn other", &pgconn.PgError{Code: "23503"}, KindUnknown},
		{"other", errors.New("connection refused"), KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "duplicate", KindDuplicate.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
