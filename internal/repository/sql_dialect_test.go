package repository

import (
	"strings"
	"testing"
)

func TestLikeOperatorByDialect(t *testing.T) {
	if got := likeOperatorByDialect("postgres"); got != "ILIKE" {
		t.Fatalf("postgres operator want ILIKE got %s", got)
	}
	if got := likeOperatorByDialect("postgresql"); got != "ILIKE" {
		t.Fatalf("postgresql operator want ILIKE got %s", got)
	}
	if got := likeOperatorByDialect("sqlite"); got != "LIKE" {
		t.Fatalf("sqlite operator want LIKE got %s", got)
	}
	if got := likeOperatorByDialect(""); got != "LIKE" {
		t.Fatalf("empty dialect operator want LIKE got %s", got)
	}
}

func TestBuildSearchLikeConditionSQLite(t *testing.T) {
	condition, argCount := buildSearchLikeConditionByDialect("sqlite", []string{"name", "description", "tags"})
	if argCount != 3 {
		t.Fatalf("arg count want 3 got %d", argCount)
	}
	if !strings.Contains(condition, "lower(name) LIKE ?") {
		t.Fatalf("condition should lower name on sqlite, got %s", condition)
	}
	if strings.Count(condition, " OR ") != 2 {
		t.Fatalf("condition should join with OR twice, got %s", condition)
	}
}

func TestBuildSearchLikeConditionPostgres(t *testing.T) {
	condition, argCount := buildSearchLikeConditionByDialect("postgres", []string{"name", "sku"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if !strings.Contains(condition, "name ILIKE ?") {
		t.Fatalf("condition should use ILIKE on postgres, got %s", condition)
	}
	if strings.Contains(condition, "lower(") {
		t.Fatalf("postgres condition should not lower columns, got %s", condition)
	}
}

func TestBuildSearchLikeConditionSkipsBlankColumns(t *testing.T) {
	condition, argCount := buildSearchLikeConditionByDialect("sqlite", []string{"name", " ", ""})
	if argCount != 1 {
		t.Fatalf("arg count want 1 got %d", argCount)
	}
	if strings.Contains(condition, " OR ") {
		t.Fatalf("single column condition should have no OR, got %s", condition)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%tecno%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%tecno%" {
			t.Fatalf("args[%d] want %%tecno%% got %v", idx, arg)
		}
	}
}
