package postgresql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder(t *testing.T) {
	var w whereBuilder
	assert.Equal(t, "TRUE", w.clause())

	emp := "e-1"
	empty := ""
	w.addIf("a.employee_id = ?", &emp)
	w.addIf("a.status = ?", &empty)
	w.addIf("a.status = ?", nil)
	w.add("a.date BETWEEN ? AND ?", "2024-03-01", "2024-03-31")

	assert.Equal(t, "a.employee_id = $1 AND a.date BETWEEN $2 AND $3", w.clause())
	assert.Equal(t, []interface{}{"e-1", "2024-03-01", "2024-03-31"}, w.args)

	assert.Equal(t, "$4", w.next(20))
	assert.Equal(t, "$5", w.next(0))
	assert.Len(t, w.args, 5)
}

func TestOrderBy(t *testing.T) {
	cols := map[string]string{"date": "a.date", "employee_name": "e.full_name"}

	assert.Equal(t, "e.full_name ASC", orderBy(cols, "employee_name", "ASC", "a.date"))
	assert.Equal(t, "a.date DESC", orderBy(cols, "a.date; DROP TABLE users", "asc; --", "a.date"))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%ann\_a\%%`, likePattern("ann_a%"))
}
