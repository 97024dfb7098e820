package gateway

import (
	"strings"
	"testing"
)

func TestQueryChaining(t *testing.T) {
	q := Query{}.
		Eq("status", "published").
		Contains("location", "coast").
		Gte("bedrooms", 2).
		Lte("rental_price", 2000).
		Or(
			Predicate{Field: "listing_type", Op: OpEq, Value: "rental"},
			Predicate{Field: "listing_type", Op: OpEq, Value: "both"},
		)

	if len(q.Where) != 4 {
		t.Fatalf("expected 4 predicates, got %d", len(q.Where))
	}
	if len(q.OrGroups) != 1 || len(q.OrGroups[0]) != 2 {
		t.Fatalf("OR group shape wrong: %v", q.OrGroups)
	}

	ops := []Op{OpEq, OpContains, OpGte, OpLte}
	for i, want := range ops {
		if q.Where[i].Op != want {
			t.Errorf("predicate %d op = %v, want %v", i, q.Where[i].Op, want)
		}
	}
}

func TestBuildWhereNumbersPlaceholders(t *testing.T) {
	q := Query{}.
		Eq("status", "published").
		Gte("bedrooms", 2).
		Or(
			Predicate{Field: "listing_type", Op: OpEq, Value: "rental"},
			Predicate{Field: "listing_type", Op: OpEq, Value: "both"},
		)

	clause, args := buildWhere(q)

	if !strings.HasPrefix(clause, " WHERE ") {
		t.Fatalf("clause = %q", clause)
	}
	for _, ph := range []string{"$1", "$2", "$3", "$4"} {
		if !strings.Contains(clause, ph) {
			t.Errorf("missing placeholder %s in %q", ph, clause)
		}
	}
	if strings.Contains(clause, "$5") {
		t.Errorf("placeholder overrun in %q", clause)
	}
	if len(args) != 4 {
		t.Fatalf("args = %v", args)
	}
	if !strings.Contains(clause, "(listing_type = $3 OR listing_type = $4)") {
		t.Errorf("OR group rendered as %q", clause)
	}
}

func TestBuildWhereContainsUsesILIKE(t *testing.T) {
	clause, args := buildWhere(Query{}.Contains("location", "Coast"))

	if !strings.Contains(clause, "location ILIKE $1") {
		t.Errorf("clause = %q", clause)
	}
	if len(args) != 1 || args[0] != "%Coast%" {
		t.Errorf("args = %v", args)
	}
}

func TestBuildWhereEmpty(t *testing.T) {
	clause, args := buildWhere(Query{})
	if clause != "" || args != nil {
		t.Errorf("empty query rendered %q with %v", clause, args)
	}
}

func TestPredicateSQLLowersSubstringMatch(t *testing.T) {
	clause, arg := predicateSQL(Predicate{Field: "title", Op: OpContains, Value: "Beach"})

	if clause != "LOWER(title) LIKE ?" {
		t.Errorf("clause = %q", clause)
	}
	if arg != "%beach%" {
		t.Errorf("arg = %v", arg)
	}
}
