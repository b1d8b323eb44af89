package catalog

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/G-Research/kafkametrics/internal/kafkametrics/predicate"
)

const (
	DefaultSchema = "metrics"
	DefaultTable  = "kafka_application_metrics"
)

type Query struct {
	Name string
	Sql  string
	Args []interface{}
}

// Template is the fixed part of a query: everything except the filter predicate.
type Template struct {
	Name     string
	Distinct bool
	Select   []string
	// Conditions are constant, argument-free conditions ANDed onto the filter predicate.
	Conditions []string
	GroupBy    []string
	Having     string
	OrderBy    []string
	Limit      int
	// Unfiltered templates ignore the predicate and always scan the whole table.
	Unfiltered bool
}

// Catalog renders templates against a single metrics table.
type Catalog struct {
	table string
}

func New(schema, table string) *Catalog {
	if table == "" {
		table = DefaultTable
	}
	name := pq.QuoteIdentifier(table)
	if schema != "" {
		name = pq.QuoteIdentifier(schema) + "." + name
	}
	return &Catalog{table: name}
}

func (c *Catalog) Table() string {
	return c.table
}

func (c *Catalog) Build(t *Template, p *predicate.CompiledPredicate) *Query {
	sql, args := c.render(t, p)
	return &Query{Name: t.Name, Sql: sql, Args: args}
}

// BuildPage renders t with LIMIT and OFFSET bound as further parameters after the predicate's.
func (c *Catalog) BuildPage(t *Template, p *predicate.CompiledPredicate, page Page) *Query {
	sql, args := c.render(t, p)
	recorder := predicate.NewRecorder(args)
	sql = fmt.Sprintf("%s LIMIT %s OFFSET %s", sql, recorder.Record(page.PageSize), recorder.Record(page.Offset()))
	return &Query{Name: t.Name, Sql: sql, Args: recorder.Args}
}

func (c *Catalog) render(t *Template, p *predicate.CompiledPredicate) (string, []interface{}) {
	if t.Unfiltered || p == nil {
		p = &predicate.CompiledPredicate{}
	}
	if len(t.Conditions) > 0 {
		p = p.And(t.Conditions...)
	}

	selectKeyword := "SELECT"
	if t.Distinct {
		selectKeyword = "SELECT DISTINCT"
	}
	parts := []string{
		fmt.Sprintf("%s %s", selectKeyword, strings.Join(t.Select, ", ")),
		fmt.Sprintf("FROM %s", c.table),
	}
	if p.Where != "" {
		parts = append(parts, p.Where)
	}
	if len(t.GroupBy) > 0 {
		parts = append(parts, fmt.Sprintf("GROUP BY %s", strings.Join(t.GroupBy, ", ")))
	}
	if t.Having != "" {
		parts = append(parts, fmt.Sprintf("HAVING %s", t.Having))
	}
	if len(t.OrderBy) > 0 {
		parts = append(parts, fmt.Sprintf("ORDER BY %s", strings.Join(t.OrderBy, ", ")))
	}
	if t.Limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", t.Limit))
	}
	args := p.Args
	if args == nil {
		args = []interface{}{}
	}
	return strings.Join(parts, " "), args
}
