package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

func TestIsUniqueViolationPgx(t *testing.T) {
	err := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})

	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation without constraint filter")
	}
	if !IsUniqueViolation(err, "idx_users_email") {
		t.Fatalf("expected match on constraint name")
	}
	if IsUniqueViolation(err, "idx_stores_slug") {
		t.Fatalf("did not expect match on other constraint")
	}
}

func TestIsUniqueViolationPq(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "idx_stores_slug"}

	if !IsUniqueViolation(err, "idx_stores_slug") {
		t.Fatalf("expected pq constraint match")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}, "") {
		t.Fatalf("foreign key violation should not match")
	}
}

func TestIsUniqueViolationTranslated(t *testing.T) {
	if !IsUniqueViolation(gorm.ErrDuplicatedKey, "") {
		t.Fatalf("expected translated duplicate key to match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatalf("unrelated error should not match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil error should not match")
	}
}
