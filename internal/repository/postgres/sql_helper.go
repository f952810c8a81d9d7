package postgres

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"conferencegateway/internal/domain"

	"github.com/lib/pq"
)

// EntityAlias is the table alias every entity query selects under.
const EntityAlias = "e"

// Table is an aliased table together with the columns it persists.
type Table struct {
	Name    string
	Alias   string
	Columns []string
}

// As returns a copy of t under another alias.
func (t Table) As(alias string) Table {
	t.Alias = alias
	return t
}

func (t Table) hasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// Column is a source column of an aliased table selected under an output alias.
type Column struct {
	Table Table
	Name  string
	Alias string
}

func (c Column) expr() string {
	return fmt.Sprintf("%s.%s AS %s", c.Table.Alias, c.Name, c.Alias)
}

// LinkTable describes a join table with no identity of its own.
type LinkTable struct {
	Name          string
	OwnerColumn   string
	RelatedColumn string
}

// Inverse returns the same link table seen from the related side.
func (l LinkTable) Inverse() LinkTable {
	return LinkTable{Name: l.Name, OwnerColumn: l.RelatedColumn, RelatedColumn: l.OwnerColumn}
}

// Table returns the link table as a selectable Table under alias.
func (l LinkTable) Table(alias string) Table {
	return Table{Name: l.Name, Alias: alias, Columns: []string{l.OwnerColumn, l.RelatedColumn}}
}

var (
	sessionTable = Table{
		Name:    "session",
		Alias:   EntityAlias,
		Columns: []string{"id", "title", "description", "start_date_time", "end_date_time"},
	}
	speakerTable = Table{
		Name:    "speaker",
		Alias:   EntityAlias,
		Columns: []string{"id", "first_name", "last_name", "email", "twitter", "bio"},
	}
	speakerSessionsLink = LinkTable{
		Name:          "rel_speaker__sessions",
		OwnerColumn:   "speaker_id",
		RelatedColumn: "sessions_id",
	}
)

// Columns returns every persisted column of table aliased as <prefix>_<column>, in table order.
func Columns(table Table, prefix string) []Column {
	cols := make([]Column, 0, len(table.Columns))
	for _, name := range table.Columns {
		cols = append(cols, Column{Table: table, Name: name, Alias: prefix + "_" + name})
	}
	return cols
}

// SessionColumns returns the aliased session columns.
func SessionColumns(table Table, prefix string) []Column {
	return Columns(table, prefix)
}

// SpeakerColumns returns the aliased speaker columns.
func SpeakerColumns(table Table, prefix string) []Column {
	return Columns(table, prefix)
}

type join struct {
	table       Table
	leftColumn  string
	rightColumn string
}

// SelectBuilder assembles a SELECT over one aliased table with optional
// joins, criteria and paging. Criteria values are bound as $n parameters.
type SelectBuilder struct {
	columns  []Column
	from     Table
	joins    []join
	criteria domain.Criteria
	page     *domain.PaginationParams
}

// Select starts a builder selecting columns.
func Select(columns ...Column) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

// From sets the aliased table to select from.
func (b *SelectBuilder) From(t Table) *SelectBuilder {
	b.from = t
	return b
}

// Join adds an inner join on from.leftColumn = t.rightColumn.
func (b *SelectBuilder) Join(t Table, leftColumn, rightColumn string) *SelectBuilder {
	b.joins = append(b.joins, join{table: t, leftColumn: leftColumn, rightColumn: rightColumn})
	return b
}

// Where sets the filter. Condition columns name a column of the FROM table,
// or alias.column for a joined table.
func (b *SelectBuilder) Where(c domain.Criteria) *SelectBuilder {
	b.criteria = c
	return b
}

// Page sets ordering, limit and offset. A nil page selects everything in storage order.
func (b *SelectBuilder) Page(p *domain.PaginationParams) *SelectBuilder {
	b.page = p
	return b
}

// Build renders the SELECT statement and its bind arguments.
func (b *SelectBuilder) Build() (string, []any, error) {
	exprs := make([]string, 0, len(b.columns))
	for _, c := range b.columns {
		exprs = append(exprs, c.expr())
	}
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(exprs, ", "))
	args, err := b.writeFromWhere(&sb)
	if err != nil {
		return "", nil, err
	}
	if err := b.writePage(&sb); err != nil {
		return "", nil, err
	}
	return sb.String(), args, nil
}

// BuildCount renders SELECT COUNT(*) over the same FROM, joins and criteria. Paging is ignored.
func (b *SelectBuilder) BuildCount() (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*)")
	args, err := b.writeFromWhere(&sb)
	if err != nil {
		return "", nil, err
	}
	return sb.String(), args, nil
}

func (b *SelectBuilder) writeFromWhere(sb *strings.Builder) ([]any, error) {
	fmt.Fprintf(sb, " FROM %s %s", b.from.Name, b.from.Alias)
	for _, j := range b.joins {
		fmt.Fprintf(sb, " JOIN %s %s ON %s.%s = %s.%s",
			j.table.Name, j.table.Alias, b.from.Alias, j.leftColumn, j.table.Alias, j.rightColumn)
	}
	if len(b.criteria) == 0 {
		return nil, nil
	}
	preds := make([]string, 0, len(b.criteria))
	args := make([]any, 0, len(b.criteria))
	for _, c := range b.criteria {
		col, err := b.resolve(c.Column)
		if err != nil {
			return nil, err
		}
		pred, arg, err := renderCondition(col, c, len(args)+1)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
		if arg != nil {
			args = append(args, arg)
		}
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(preds, " AND "))
	return args, nil
}

func (b *SelectBuilder) writePage(sb *strings.Builder) error {
	if b.page == nil {
		return nil
	}
	if len(b.page.Sort) > 0 {
		orders := make([]string, 0, len(b.page.Sort))
		for _, o := range b.page.Sort {
			col, err := b.resolve(o.Column)
			if err != nil {
				return err
			}
			dir := strings.ToUpper(o.Direction)
			switch dir {
			case "":
				dir = domain.SortAsc
			case domain.SortAsc, domain.SortDesc:
			default:
				return fmt.Errorf("%w: sort direction %q", domain.ErrInvalidCriteria, o.Direction)
			}
			orders = append(orders, col+" "+dir)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(orders, ", "))
	}
	if b.page.PageSize > 0 {
		fmt.Fprintf(sb, " LIMIT %d OFFSET %d", b.page.PageSize, b.page.Offset())
	}
	return nil
}

// resolve qualifies a column reference with its table alias, rejecting
// anything that is not a known column.
func (b *SelectBuilder) resolve(ref string) (string, error) {
	alias, name, qualified := strings.Cut(ref, ".")
	if !qualified {
		alias, name = b.from.Alias, ref
	}
	tables := make([]Table, 0, len(b.joins)+1)
	tables = append(tables, b.from)
	for _, j := range b.joins {
		tables = append(tables, j.table)
	}
	for _, t := range tables {
		if t.Alias == alias && t.hasColumn(name) {
			return alias + "." + name, nil
		}
	}
	return "", fmt.Errorf("%w: unknown column %q", domain.ErrInvalidCriteria, ref)
}

// isNull reports whether v is nil or a nil pointer, map, slice or interface.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func renderCondition(col string, c domain.Condition, n int) (string, any, error) {
	if c.Op != domain.OpIn && isNull(c.Value) {
		c.Value = nil
	}
	switch c.Op {
	case domain.OpEq, domain.OpNe:
		if c.Value == nil {
			if c.Op == domain.OpEq {
				return col + " IS NULL", nil, nil
			}
			return col + " IS NOT NULL", nil, nil
		}
		return fmt.Sprintf("%s %s $%d", col, c.Op, n), c.Value, nil
	case domain.OpLt, domain.OpLte, domain.OpGt, domain.OpGte, domain.OpLike:
		if c.Value == nil {
			return "", nil, fmt.Errorf("%w: %s requires a value", domain.ErrInvalidCriteria, c.Op)
		}
		return fmt.Sprintf("%s %s $%d", col, c.Op, n), c.Value, nil
	case domain.OpIn:
		switch c.Value.(type) {
		case []int64, []string:
			return fmt.Sprintf("%s = ANY($%d)", col, n), pq.Array(c.Value), nil
		default:
			return "", nil, fmt.Errorf("%w: IN requires []int64 or []string, got %T", domain.ErrInvalidCriteria, c.Value)
		}
	default:
		return "", nil, fmt.Errorf("%w: unsupported operator %q", domain.ErrInvalidCriteria, c.Op)
	}
}
