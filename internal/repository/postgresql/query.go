package postgresql

import (
	"fmt"
	"strings"
)

// whereBuilder collects AND-ed conditions with positional $n arguments.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

// add appends cond, replacing each "?" with the next placeholder.
func (w *whereBuilder) add(cond string, args ...interface{}) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

// addIf calls add when v is a non-empty string pointer.
func (w *whereBuilder) addIf(cond string, v *string) {
	if v != nil && *v != "" {
		w.add(cond, *v)
	}
}

func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return "TRUE"
	}
	return strings.Join(w.conds, " AND ")
}

// next returns the placeholder for an argument appended after the conditions.
func (w *whereBuilder) next(arg interface{}) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

// orderBy resolves a client sort key through a whitelist of columns.
func orderBy(columns map[string]string, sortBy, sortOrder, fallback string) string {
	col, ok := columns[sortBy]
	if !ok {
		col = fallback
	}
	dir := "DESC"
	if strings.ToLower(sortOrder) == "asc" {
		dir = "ASC"
	}
	return col + " " + dir
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
