package frame

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"sort"
	"time"
)

// RelTolerance is the relative tolerance used when comparing two floats.
const RelTolerance = 1e-9

// ErrBothEmpty is returned when both tables have no rows and empty results
// were not explicitly allowed. An empty-vs-empty comparison usually means the
// test itself is wrong.
var ErrBothEmpty = errors.New("both tables have no rows; likely there is a mistake with the test")

// ErrNilTable is returned when either table passed to AssertEqual is nil.
var ErrNilTable = errors.New("cannot compare a nil table")

// SchemaMismatchError reports tables whose column sets differ.
type SchemaMismatchError struct {
	Actual   []string
	Expected []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("tables do not contain the same columns. actual: %v, expected: %v", e.Actual, e.Expected)
}

// ShapeMismatchError reports tables with the same columns but a different
// number of rows.
type ShapeMismatchError struct {
	ActualRows   int
	ExpectedRows int
	Actual       *Table
	Expected     *Table
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("tables have different shapes: actual has %d rows, expected %d\n%s",
		e.ActualRows, e.ExpectedRows, renderPair(e.Expected, e.Actual))
}

// ValueMismatchError reports the first cell that differs.
type ValueMismatchError struct {
	Row      int
	Column   string
	Actual   any
	Expected any
	// Tables as compared, after any canonical sorting
	ActualTable   *Table
	ExpectedTable *Table
}

func (e *ValueMismatchError) Error() string {
	return fmt.Sprintf("tables not equal at row %d column %q: actual %s, expected %s\n%s",
		e.Row, e.Column, formatValue(e.Actual), formatValue(e.Expected),
		renderPair(e.ExpectedTable, e.ActualTable))
}

func renderPair(expected, actual *Table) string {
	return "Expected:\n" + expected.Markdown() + "\n---\nActual:\n" + actual.Markdown()
}

type options struct {
	sortColumns bool
	allowEmpty  bool
}

// Option configures AssertEqual.
type Option func(*options)

// WithoutSorting compares tables as given: column order and row order must
// both match.
func WithoutSorting() Option {
	return func(o *options) { o.sortColumns = false }
}

// AllowEmpty permits both tables to be empty.
func AllowEmpty() Option {
	return func(o *options) { o.allowEmpty = true }
}

// AssertEqual returns nil if actual and expected hold the same data.
//
// Checks run in order: column sets, emptiness, row counts, then cell values.
// Unless WithoutSorting is given, columns are arranged by name and rows are
// sorted by every column before cells are compared.
func AssertEqual(actual, expected *Table, opts ...Option) error {
	o := options{sortColumns: true}
	for _, opt := range opts {
		opt(&o)
	}

	if actual == nil || expected == nil {
		return fmt.Errorf("%w (actual nil: %t, expected nil: %t)", ErrNilTable, actual == nil, expected == nil)
	}

	if !sameColumnSet(actual.Columns, expected.Columns) {
		return &SchemaMismatchError{
			Actual:   sortedCopy(actual.Columns),
			Expected: sortedCopy(expected.Columns),
		}
	}

	if !o.allowEmpty && actual.NumRows() == 0 && expected.NumRows() == 0 {
		return ErrBothEmpty
	}

	if actual.NumRows() != expected.NumRows() {
		return &ShapeMismatchError{
			ActualRows:   actual.NumRows(),
			ExpectedRows: expected.NumRows(),
			Actual:       actual,
			Expected:     expected,
		}
	}

	if o.sortColumns {
		actual = Canonical(actual)
		expected = Canonical(expected)
	}

	for r := range expected.Rows {
		for c, col := range expected.Columns {
			want := expected.Rows[r][c]
			got := cell(actual, r, c)
			if c >= len(actual.Columns) || actual.Columns[c] != col || !valuesEqual(got, want) {
				return &ValueMismatchError{
					Row:           r,
					Column:        col,
					Actual:        got,
					Expected:      want,
					ActualTable:   actual,
					ExpectedTable: expected,
				}
			}
		}
	}
	return nil
}

// Canonical returns a copy of t with columns ordered by name and rows sorted
// by every column in that order.
func Canonical(t *Table) *Table {
	cols := sortedCopy(t.Columns)
	positions := make([]int, len(cols))
	for i, name := range cols {
		positions[i] = t.ColumnIndex(name)
	}

	rows := make([][]any, len(t.Rows))
	for r, src := range t.Rows {
		row := make([]any, len(cols))
		for i, p := range positions {
			if p < len(src) {
				row[i] = src[p]
			}
		}
		rows[r] = row
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for c := range cols {
			if d := compareValues(rows[i][c], rows[j][c]); d != 0 {
				return d < 0
			}
		}
		return false
	})

	return &Table{Columns: cols, Rows: rows}
}

func cell(t *Table, r, c int) any {
	if c < len(t.Rows[r]) {
		return t.Rows[r][c]
	}
	return nil
}

func sameColumnSet(a, b []string) bool {
	return slices.Equal(dedupe(a), dedupe(b))
}

func dedupe(cols []string) []string {
	return slices.Compact(sortedCopy(cols))
}

func sortedCopy(cols []string) []string {
	out := slices.Clone(cols)
	slices.Sort(out)
	return out
}

// isNull reports whether v is a missing value: nil or a NaN float.
func isNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

func valuesEqual(a, b any) bool {
	aNull, bNull := isNull(a), isNull(b)
	if aNull || bNull {
		return aNull && bNull
	}

	// Integers compare exactly; float64 cannot represent all of them
	if ai, ok := asInteger(a); ok {
		if bi, ok := asInteger(b); ok {
			return ai == bi
		}
	}

	af, aIsFloat := asFloat(a)
	bf, bIsFloat := asFloat(b)
	if aIsFloat && bIsFloat {
		return isClose(af, bf)
	}

	an, aNum := asNumber(a)
	bn, bNum := asNumber(b)
	if aNum && bNum {
		return an == bn
	}

	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}

	return reflect.DeepEqual(a, b)
}

// isClose mirrors a relative-tolerance comparison with no absolute floor.
func isClose(a, b float64) bool {
	if a == b {
		return true
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	return math.Abs(a-b) <= RelTolerance*math.Max(math.Abs(a), math.Abs(b))
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	return 0, false
}

// integer holds any Go integer value without loss: a magnitude and a sign.
// Zero is never negative, so == compares values.
type integer struct {
	mag uint64
	neg bool
}

func (i integer) compare(j integer) int {
	switch {
	case i.neg != j.neg:
		if i.neg {
			return -1
		}
		return 1
	case i.neg:
		return cmp.Compare(j.mag, i.mag)
	default:
		return cmp.Compare(i.mag, j.mag)
	}
}

func fromInt64(x int64) integer {
	if x < 0 {
		return integer{mag: uint64(-(x + 1)) + 1, neg: true} //nolint:gosec // G115: -(x+1) is non-negative
	}
	return integer{mag: uint64(x)} //nolint:gosec // G115: x is non-negative
}

func asInteger(v any) (integer, bool) {
	switch x := v.(type) {
	case int:
		return fromInt64(int64(x)), true
	case int8:
		return fromInt64(int64(x)), true
	case int16:
		return fromInt64(int64(x)), true
	case int32:
		return fromInt64(int64(x)), true
	case int64:
		return fromInt64(x), true
	case uint:
		return integer{mag: uint64(x)}, true
	case uint8:
		return integer{mag: uint64(x)}, true
	case uint16:
		return integer{mag: uint64(x)}, true
	case uint32:
		return integer{mag: uint64(x)}, true
	case uint64:
		return integer{mag: x}, true
	}
	return integer{}, false
}

// asNumber widens any numeric value to float64.
func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return asFloat(v)
}

// Type ranks keep sorting total across mixed-type columns.
const (
	rankBool = iota
	rankNumber
	rankString
	rankTime
	rankOther
	rankNull
)

func typeRank(v any) int {
	if isNull(v) {
		return rankNull
	}
	if _, ok := asNumber(v); ok {
		return rankNumber
	}
	switch v.(type) {
	case bool:
		return rankBool
	case string:
		return rankString
	case time.Time:
		return rankTime
	}
	return rankOther
}

// compareValues orders values for canonical sorting. Nulls sort last.
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ra {
	case rankNull:
		return 0
	case rankBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case rankNumber:
		if ai, ok := asInteger(a); ok {
			if bi, ok := asInteger(b); ok {
				return ai.compare(bi)
			}
		}
		an, _ := asNumber(a)
		bn, _ := asNumber(b)
		return cmp.Compare(an, bn)
	case rankString:
		return cmp.Compare(a.(string), b.(string))
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time))
	default:
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}
