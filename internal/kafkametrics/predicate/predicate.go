package predicate

import (
	"fmt"
	"strings"

	"github.com/G-Research/kafkametrics/internal/kafkametrics/model"
)

const (
	MetricDateCol      = "metric_date"
	ClusterNameCol     = "cluster_name"
	NamespaceCol       = "namespace"
	EnvironmentCol     = "environment"
	ApplicationNameCol = "application_name"
	PoolIdCol          = "pool_id"
	DataPlaneCol       = "data_plane"
	MotsIdCol          = "mots_id"
)

// CompiledPredicate is a WHERE clause together with the values for its placeholders.
// Placeholder $i refers to Args[i-1].
type CompiledPredicate struct {
	Where string
	Args  []interface{}

	conditions []string
}

// IsEmpty reports whether the predicate places no constraint on rows at all.
func (p *CompiledPredicate) IsEmpty() bool {
	return len(p.conditions) == 0
}

func (p *CompiledPredicate) Placeholders() int {
	return len(p.Args)
}

// And returns a copy of p with extra argument-free conditions appended.
func (p *CompiledPredicate) And(conditions ...string) *CompiledPredicate {
	all := make([]string, 0, len(p.conditions)+len(conditions))
	all = append(all, p.conditions...)
	all = append(all, conditions...)
	return &CompiledPredicate{
		Where:      whereSql(all),
		Args:       p.Args,
		conditions: all,
	}
}

// Recorder hands out positional placeholders, appending the value for each to Args.
type Recorder struct {
	Args []interface{}
}

func NewRecorder(args []interface{}) *Recorder {
	return &Recorder{Args: append([]interface{}{}, args...)}
}

// Record saves value to be used in the prepared statement and returns the placeholder to put in
// its place in the SQL string.
func (r *Recorder) Record(value interface{}) string {
	r.Args = append(r.Args, value)
	return fmt.Sprintf("$%d", len(r.Args))
}

type rule interface {
	condition(f *model.Filter, r *Recorder) (string, bool)
}

type dateBoundRule struct {
	operator string
	bound    func(f *model.Filter) model.Date
}

func (d dateBoundRule) condition(f *model.Filter, r *Recorder) (string, bool) {
	bound := d.bound(f)
	if !bound.IsSet() {
		return "", false
	}
	return fmt.Sprintf("%s %s %s", MetricDateCol, d.operator, r.Record(bound.Time)), true
}

type anyOfRule struct {
	column string
	values func(f *model.Filter) []string
}

func (a anyOfRule) condition(f *model.Filter, r *Recorder) (string, bool) {
	values := a.values(f)
	if len(values) == 0 {
		return "", false
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = r.Record(v)
	}
	return fmt.Sprintf("%s IN (%s)", a.column, strings.Join(placeholders, ", ")), true
}

// Rules are evaluated in this order, and placeholder numbering follows it.
var rules = []rule{
	dateBoundRule{operator: ">=", bound: func(f *model.Filter) model.Date { return f.DateRange.Start }},
	dateBoundRule{operator: "<=", bound: func(f *model.Filter) model.Date { return f.DateRange.End }},
	anyOfRule{column: ClusterNameCol, values: func(f *model.Filter) []string { return f.Clusters }},
	anyOfRule{column: NamespaceCol, values: func(f *model.Filter) []string { return f.Namespaces }},
	anyOfRule{column: EnvironmentCol, values: func(f *model.Filter) []string { return f.Environments }},
	anyOfRule{column: ApplicationNameCol, values: func(f *model.Filter) []string { return f.Applications }},
	anyOfRule{column: PoolIdCol, values: func(f *model.Filter) []string { return f.PoolIds }},
	anyOfRule{column: DataPlaneCol, values: func(f *model.Filter) []string { return f.DataPlanes }},
	anyOfRule{column: MotsIdCol, values: func(f *model.Filter) []string { return f.MotsIds }},
}

// Compile turns a filter into a parameterized WHERE clause. Filter values never appear in the
// SQL text, only their placeholders.
func Compile(filter model.Filter) *CompiledPredicate {
	recorder := NewRecorder(nil)
	var conditions []string
	for _, rl := range rules {
		if cond, ok := rl.condition(&filter, recorder); ok {
			conditions = append(conditions, cond)
		}
	}
	return &CompiledPredicate{
		Where:      whereSql(conditions),
		Args:       recorder.Args,
		conditions: conditions,
	}
}

func whereSql(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return fmt.Sprintf("WHERE %s", strings.Join(conditions, " AND "))
}
