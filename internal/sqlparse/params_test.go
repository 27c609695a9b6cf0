package sqlparse

import "testing"

func TestRecoverParamNamesInsertPositional(t *testing.T) {
	sql := "INSERT INTO users (email, age) VALUES ($1, $2)"
	names := RecoverParamNames(sql, 2)
	if names[0] != "email" || names[1] != "age" {
		t.Errorf("got %v, want [email age]", names)
	}
}

func TestRecoverParamNamesComparison(t *testing.T) {
	sql := "SELECT * FROM users WHERE email = $1 AND age > $2"
	names := RecoverParamNames(sql, 2)
	if names[0] != "email" || names[1] != "age" {
		t.Errorf("got %v, want [email age]", names)
	}
}

func TestRecoverParamNamesLimitOffset(t *testing.T) {
	sql := "SELECT * FROM users ORDER BY id LIMIT $1 OFFSET $2"
	names := RecoverParamNames(sql, 2)
	if names[0] != "limit" || names[1] != "offset" {
		t.Errorf("got %v, want [limit offset]", names)
	}
}

func TestRecoverParamNamesFallback(t *testing.T) {
	sql := "SELECT $1 + $2"
	names := RecoverParamNames(sql, 2)
	if names[0] != "param1" || names[1] != "param2" {
		t.Errorf("got %v, want [param1 param2]", names)
	}
}

func TestRecoverParamNamesReverseComparison(t *testing.T) {
	sql := "SELECT * FROM users WHERE $1 = email"
	names := RecoverParamNames(sql, 1)
	if names[0] != "email" {
		t.Errorf("got %v, want [email]", names)
	}
}

func TestRecoverParamNamesSkipsLiteralDollarSigns(t *testing.T) {
	sql := "SELECT * FROM users WHERE note = '$1 off today' AND email = $1"
	names := RecoverParamNames(sql, 1)
	if names[0] != "email" {
		t.Errorf("got %v, want [email] — a $1-shaped literal must not be mistaken for the real parameter", names)
	}
}
