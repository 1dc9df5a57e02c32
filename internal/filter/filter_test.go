package filter

import (
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// cond — шорткат для создания условия в тестах.
func cond(field string, op Operator, value string) Condition {
	return Condition{Field: field, Operator: op, Value: json.RawMessage(value)}
}

// --- Тесты BuildWhereClause ---

// TestBuildWhereClause_NilConditions проверяет отсутствие фильтра: TRUE — выбирается всё.
func TestBuildWhereClause_NilConditions(t *testing.T) {
	b := NewWhereBuilder("files", 0)
	where, params := b.BuildWhereClause(nil)

	if where != "TRUE" {
		t.Errorf("where = %q, ожидался TRUE", where)
	}
	if len(params) != 0 {
		t.Errorf("params count = %d, ожидался 0", len(params))
	}
}

// TestBuildWhereClause_EmptyBranches проверяет пустой фильтр: FALSE — явный deny.
func TestBuildWhereClause_EmptyBranches(t *testing.T) {
	b := NewWhereBuilder("files", 0)
	where, params := b.BuildWhereClause(&Conditions{})

	if where != "FALSE" {
		t.Errorf("where = %q, ожидался FALSE", where)
	}
	if len(params) != 0 {
		t.Errorf("params count = %d, ожидался 0", len(params))
	}
}

// TestBuildWhereClause_AndGroup проверяет AND-ветвь со смещением плейсхолдеров.
// Позиции $1/$2 заняты параметрами вызывающего кода — фильтр начинается с $3.
func TestBuildWhereClause_AndGroup(t *testing.T) {
	b := NewWhereBuilder("files", 2)
	where, params := b.BuildWhereClause(&Conditions{
		And: []Condition{
			cond("createdAt", OpGte, `"2024-01-01"`),
			cond("title", OpILike, `"%report%"`),
		},
	})

	if !strings.Contains(where, "files.created_at >= $3") {
		t.Errorf("where = %q, ожидалось 'files.created_at >= $3'", where)
	}
	if !strings.Contains(where, "files.title ILIKE $4") {
		t.Errorf("where = %q, ожидалось 'files.title ILIKE $4'", where)
	}
	if len(params) != 2 {
		t.Fatalf("params count = %d, ожидался 2", len(params))
	}
	// JSON-кавычки строковых литералов разворачиваются
	if params[0] != "2024-01-01" {
		t.Errorf("params[0] = %q, ожидался '2024-01-01'", params[0])
	}
	if params[1] != "%report%" {
		t.Errorf("params[1] = %q, ожидался '%%report%%'", params[1])
	}
}

// TestBuildWhereClause_OrGroup проверяет OR-ветвь.
func TestBuildWhereClause_OrGroup(t *testing.T) {
	b := NewWhereBuilder("files", 0)
	where, params := b.BuildWhereClause(&Conditions{
		Or: []Condition{
			cond("type", OpEq, `"png"`),
			cond("type", OpEq, `"jpg"`),
		},
	})

	if !strings.Contains(where, "(files.type = $1) OR (files.type = $2)") {
		t.Errorf("where = %q, ожидалась OR-связка", where)
	}
	if len(params) != 2 {
		t.Errorf("params count = %d, ожидался 2", len(params))
	}
}

// TestBuildWhereClause_BothGroups проверяет соединение (AND-группа) AND (OR-группа).
func TestBuildWhereClause_BothGroups(t *testing.T) {
	b := NewWhereBuilder("files", 0)
	where, _ := b.BuildWhereClause(&Conditions{
		And: []Condition{cond("size", OpGt, `"100"`)},
		Or: []Condition{
			cond("type", OpEq, `"png"`),
			cond("type", OpEq, `"jpg"`),
		},
	})

	if !strings.Contains(where, ") AND (") {
		t.Errorf("where = %q, ожидалось соединение групп через AND", where)
	}
	if !strings.HasPrefix(where, "(") {
		t.Errorf("where = %q, ожидались скобки вокруг групп", where)
	}
}

// TestBuildWhereClause_InOperator проверяет компиляцию in в = ANY($n).
func TestBuildWhereClause_InOperator(t *testing.T) {
	b := NewWhereBuilder("files", 0)
	where, params := b.BuildWhereClause(&Conditions{
		And: []Condition{cond("type", OpIn, `["png","jpg"]`)},
	})

	if !strings.Contains(where, "files.type = ANY($1)") {
		t.Errorf("where = %q, ожидался '= ANY($1)'", where)
	}
	if len(params) != 1 {
		t.Fatalf("params count = %d, ожидался 1", len(params))
	}
	// Массив передаётся своим JSON-текстом
	if params[0] != `["png","jpg"]` {
		t.Errorf("params[0] = %q, ожидался JSON-текст массива", params[0])
	}
}

// TestBuildWhereClause_NotInOperator проверяет компиляцию not-in в != ALL($n).
func TestBuildWhereClause_NotInOperator(t *testing.T) {
	b := NewWhereBuilder("files", 0)
	where, _ := b.BuildWhereClause(&Conditions{
		And: []Condition{cond("type", OpNotIn, `["exe"]`)},
	})

	if !strings.Contains(where, "files.type != ALL($1)") {
		t.Errorf("where = %q, ожидался '!= ALL($1)'", where)
	}
}

// TestBuildWhereClause_IsNull проверяет NULL-сравнение: литерал NULL в SQL,
// без плейсхолдера, счётчик не продвигается.
func TestBuildWhereClause_IsNull(t *testing.T) {
	b := NewWhereBuilder("files", 0)
	where, params := b.BuildWhereClause(&Conditions{
		And: []Condition{
			cond("path", OpIs, `null`),
			cond("title", OpEq, `"a.txt"`),
		},
	})

	if !strings.Contains(where, "files.path IS NOT DISTINCT FROM NULL") {
		t.Errorf("where = %q, ожидалось NULL-сравнение", where)
	}
	// Следующее условие получает $1 — NULL не занял позицию
	if !strings.Contains(where, "files.title = $1") {
		t.Errorf("where = %q, ожидался $1 для следующего условия", where)
	}
	if len(params) != 1 {
		t.Errorf("params count = %d, ожидался 1 (NULL не образует параметра)", len(params))
	}
}

// TestBuildWhereClause_IsNotNull проверяет is-not с null-значением.
func TestBuildWhereClause_IsNotNull(t *testing.T) {
	b := NewWhereBuilder("files", 0)
	where, params := b.BuildWhereClause(&Conditions{
		And: []Condition{cond("path", OpIsNot, `null`)},
	})

	if !strings.Contains(where, "files.path IS DISTINCT FROM NULL") {
		t.Errorf("where = %q, ожидался IS DISTINCT FROM NULL", where)
	}
	if len(params) != 0 {
		t.Errorf("params count = %d, ожидался 0", len(params))
	}
}

// TestBuildWhereClause_FieldNormalization проверяет нормализацию camelCase-полей
// в snake_case-столбцы.
func TestBuildWhereClause_FieldNormalization(t *testing.T) {
	b := NewWhereBuilder("f", 0)
	where, _ := b.BuildWhereClause(&Conditions{
		And: []Condition{cond("isPublic", OpEq, `"true"`)},
	})

	if !strings.Contains(where, "f.is_public") {
		t.Errorf("where = %q, ожидался столбец is_public", where)
	}
}

// --- Тесты ParseConditions ---

// TestParseConditions_Valid проверяет разбор корректного JSON-фильтра.
func TestParseConditions_Valid(t *testing.T) {
	raw := `{"and":[{"field":"title","operator":"eq","value":"a.txt"}]}`
	conds := ParseConditions(raw, slog.Default())

	if conds == nil {
		t.Fatal("conds = nil, ожидалось дерево условий")
	}
	if len(conds.And) != 1 {
		t.Fatalf("And count = %d, ожидался 1", len(conds.And))
	}
	if conds.And[0].Field != "title" {
		t.Errorf("Field = %q, ожидался 'title'", conds.And[0].Field)
	}
	if conds.And[0].Operator != OpEq {
		t.Errorf("Operator = %q, ожидался eq", conds.And[0].Operator)
	}
}

// TestParseConditions_Malformed проверяет, что мусор с границы не фатален.
func TestParseConditions_Malformed(t *testing.T) {
	conds := ParseConditions(`{"and": [broken`, slog.Default())

	if conds != nil {
		t.Errorf("conds = %v, ожидался nil для некорректного JSON", conds)
	}
}

// TestParseConditions_UnknownOperator проверяет отказ в разборе
// условия с оператором вне закрытого множества.
func TestParseConditions_UnknownOperator(t *testing.T) {
	raw := `{"and":[{"field":"title","operator":"contains","value":"x"}]}`
	conds := ParseConditions(raw, slog.Default())

	if conds != nil {
		t.Errorf("conds = %v, ожидался nil для неизвестного оператора", conds)
	}
}

// TestParseConditions_Empty проверяет пустую строку фильтра.
func TestParseConditions_Empty(t *testing.T) {
	if conds := ParseConditions("", slog.Default()); conds != nil {
		t.Errorf("conds = %v, ожидался nil для пустой строки", conds)
	}
}
