package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"exclusion violation", &pgconn.PgError{Code: "23P01"}, true},
		{"wrapped exclusion violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23P01"}), true},
		{"unassigned overlap", errUnassignedOverlap, true},
		{"wrapped unassigned overlap", fmt.Errorf("create: %w", errUnassignedOverlap), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"no rows", pgx.ErrNoRows, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := IsConflict(tc.err); got != tc.want {
			t.Fatalf("%s: IsConflict = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(pgx.ErrNoRows) {
		t.Fatal("pgx.ErrNoRows should map to not found")
	}
	if !IsNotFound(fmt.Errorf("find: %w", pgx.ErrNoRows)) {
		t.Fatal("wrapped pgx.ErrNoRows should map to not found")
	}
	if IsNotFound(errors.New("boom")) {
		t.Fatal("arbitrary errors are not not-found")
	}
}
