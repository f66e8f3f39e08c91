package negotiation

import (
	"reflect"
	"strings"
	"time"
)

// SortOrder for query results.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// Criterion is a single filter: a dotted field path, an operator, and a
// literal operand.
type Criterion struct {
	OperandLeft  string `json:"operandLeft"`
	Operator     string `json:"operator"`
	OperandRight string `json:"operandRight"`
}

// QuerySpec describes a negotiation query. Filter paths must pass
// ValidateFilterPath before the spec reaches a store.
type QuerySpec struct {
	Filter    []Criterion `json:"filter,omitempty"`
	SortField string      `json:"sortField,omitempty"`
	SortOrder SortOrder   `json:"sortOrder,omitempty"`
	Limit     int         `json:"limit,omitempty"`
	Offset    int         `json:"offset,omitempty"`
}

// Validate checks every filter path and the sort field against the
// negotiation schema. Violations are BAD_REQUEST.
func (q QuerySpec) Validate() error {
	for _, c := range q.Filter {
		if err := ValidateFilterPath(c.OperandLeft); err != nil {
			return err
		}
		if c.Operator == "" {
			return BadRequest("criterion %q is missing an operator", c.OperandLeft)
		}
	}
	if q.SortField != "" {
		if err := ValidateFilterPath(q.SortField); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFilterPath resolves a dotted path against the exposed JSON
// schema of ContractNegotiation. Resolution is case sensitive, every
// segment must name an existing field, and the path must stop at a
// concrete field: truncated paths ("contractOffers.policy.") and paths
// running past a leaf ("contractAgreement.contractStartDate.begin") are
// both rejected.
func ValidateFilterPath(path string) error {
	if path == "" {
		return BadRequest("empty filter path")
	}
	segments := strings.Split(path, ".")
	t := reflect.TypeOf(ContractNegotiation{})
	for i, segment := range segments {
		if segment == "" {
			return BadRequest("incomplete filter path %q", path)
		}
		t = elemType(t)
		if t.Kind() != reflect.Struct || isLeafType(t) {
			return BadRequest("filter path %q runs past field %q", path, strings.Join(segments[:i], "."))
		}
		field, ok := fieldByJSONName(t, segment)
		if !ok {
			return BadRequest("filter path %q does not resolve: unknown field %q", path, segment)
		}
		t = field.Type
	}
	return nil
}

func elemType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	return t
}

// isLeafType marks struct types that are exposed as scalar JSON values.
func isLeafType(t reflect.Type) bool {
	return t == reflect.TypeOf(time.Time{})
}

func fieldByJSONName(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" || tag == "" {
			continue
		}
		if comma := strings.Index(tag, ","); comma >= 0 {
			tag = tag[:comma]
		}
		if tag == name {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// ParseFilterExpression parses the API filter form "path OP value" (or
// the compact "path=value") into a Criterion.
func ParseFilterExpression(expr string) (Criterion, error) {
	expr = strings.TrimSpace(expr)
	if parts := strings.SplitN(expr, " ", 3); len(parts) == 3 {
		return Criterion{OperandLeft: parts[0], Operator: parts[1], OperandRight: strings.TrimSpace(parts[2])}, nil
	}
	if idx := strings.Index(expr, "="); idx > 0 {
		return Criterion{OperandLeft: expr[:idx], Operator: "=", OperandRight: expr[idx+1:]}, nil
	}
	return Criterion{}, BadRequest("cannot parse filter expression %q", expr)
}
