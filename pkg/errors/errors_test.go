package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestDeniedCarriesResourceAndAction(t *testing.T) {
	err := Denied("mission", "update")
	if err.Code() != CodeForbidden {
		t.Fatalf("expected forbidden, got %s", err.Code())
	}
	details, ok := err.Details().(map[string]string)
	if !ok || details["resource"] != "mission" || details["action"] != "update" {
		t.Fatalf("unexpected details %#v", err.Details())
	}
}

func TestWrapAndAsThroughChain(t *testing.T) {
	cause := stdErrors.New("db down")
	wrapped := fmt.Errorf("outer: %w", Wrap(CodeDependency, cause, "load campaign"))

	typed := As(wrapped)
	if typed == nil || typed.Code() != CodeDependency {
		t.Fatalf("expected dependency error, got %#v", typed)
	}
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if !IsCode(wrapped, CodeDependency) || IsCode(wrapped, CodeNotFound) {
		t.Fatalf("IsCode mismatch")
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatalf("plain error should not convert")
	}
	if NotFound("campaign").Message() != "campaign not found" {
		t.Fatalf("unexpected not found message")
	}
}

func TestNilErrorAccessors(t *testing.T) {
	var e *Error
	if e.Code() != CodeInternal || e.Message() != "" || e.Details() != nil || e.Unwrap() != nil {
		t.Fatalf("nil error accessors should be zero-valued")
	}
}

func TestDumpCapturesPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key", TableName: "users", Message: "duplicate key value"}
	d := Dump(Wrap(CodeConflict, pgErr, "insert user"))
	if d.Code != CodeConflict || d.PGCode != "23505" || d.PGConstraint != "users_username_key" {
		t.Fatalf("unexpected dump %#v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(d.Chain))
	}

	pqErr := &pq.Error{Code: "23503", Constraint: "mission_records_author_id_fkey", Table: "mission_records"}
	d = Dump(pqErr)
	if d.PGCode != "23503" || d.PGTable != "mission_records" {
		t.Fatalf("unexpected pq dump %#v", d)
	}

	if Dump(nil).TopMessage != "" {
		t.Fatalf("nil dump should be empty")
	}
}

func TestSQLState(t *testing.T) {
	if got := SQLState(fmt.Errorf("x: %w", &pgconn.PgError{Code: "23505"})); got != "23505" {
		t.Fatalf("expected 23505, got %q", got)
	}
	if got := SQLState(&pq.Error{Code: "23503"}); got != "23503" {
		t.Fatalf("expected 23503, got %q", got)
	}
	if got := SQLState(stdErrors.New("plain")); got != "" {
		t.Fatalf("expected empty state, got %q", got)
	}
}
