package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildWhereEmpty(t *testing.T) {
	where, args := buildWhere(Filters{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildWhereSingleClause(t *testing.T) {
	where, args := buildWhere(Filters{Action: "delete"})
	assert.Equal(t, " WHERE action = $1", where)
	assert.Equal(t, []any{"delete"}, args)
}

func TestBuildWhereCombinesClauses(t *testing.T) {
	where, args := buildWhere(Filters{Action: "update", Resource: "produit", Search: "rosalie"})
	assert.Equal(t, " WHERE action = $1 AND resource = $2 AND (actor ILIKE $3 OR detail ILIKE $3)", where)
	assert.Equal(t, []any{"update", "produit", "%rosalie%"}, args)
}
