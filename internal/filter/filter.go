// Пакет filter — компиляция динамических фильтров в параметризованный SQL.
//
// Внешний вызывающий присылает дерево условий (одна ступень групп AND/OR),
// WhereBuilder превращает его в тело WHERE-клаузы с позиционными
// плейсхолдерами $n. Литералы значений никогда не встраиваются в SQL —
// они путешествуют отдельным списком параметров и типизируются
// коэрцером на границе привязки к базе (см. coerce.go).
package filter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bigkaa/filevault/internal/casing"
)

// Condition — одно условие фильтрации.
type Condition struct {
	// Field — имя поля во внешнем стиле (будет нормализовано в snake_case)
	Field string `json:"field"`
	// Operator — оператор из закрытого множества
	Operator Operator `json:"operator"`
	// Value — произвольный JSON-скаляр, массив или null
	Value json.RawMessage `json:"value"`
}

// Conditions — дерево фильтра: две необязательные ветви.
// Обе присутствуют — группы соединяются как (AND-группа) AND (OR-группа).
// Глубже одной ступени вложенность не поддерживается.
type Conditions struct {
	And []Condition `json:"and"`
	Or  []Condition `json:"or"`
}

// ParseConditions разбирает JSON-строку фильтра с границы запроса.
// Некорректный JSON — не фатальная ошибка: логируется и фильтры
// игнорируются (возвращается nil), запрос продолжается.
func ParseConditions(raw string, logger *slog.Logger) *Conditions {
	if raw == "" {
		return nil
	}
	var conds Conditions
	if err := json.Unmarshal([]byte(raw), &conds); err != nil {
		logger.Error("Ошибка разбора условий фильтра, фильтры игнорируются",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return &conds
}

// WhereBuilder — построитель WHERE-клаузы с нумерацией плейсхолдеров.
// Параметры вызывающего кода занимают позиции 1..initialCount,
// плейсхолдеры фильтра начинаются с $initialCount+1.
type WhereBuilder struct {
	// Params — литералы условий в строковой форме, в порядке плейсхолдеров
	Params  []string
	counter int
	alias   string
}

// NewWhereBuilder создаёт построитель для таблицы alias.
func NewWhereBuilder(alias string, initialCount int) *WhereBuilder {
	return &WhereBuilder{
		counter: initialCount + 1,
		alias:   alias,
	}
}

// BuildWhereClause компилирует дерево условий в тело WHERE-клаузы.
//
//   - conds == nil → ("TRUE", nil): фильтр не задан, ничего не ограничиваем
//   - обе ветви пусты → ("FALSE", nil): фильтр задан, но условий нет —
//     явный deny, выбирается ничего (не всё)
//
// Значения возвращаются сырыми строками: приведение типов выполняется
// на границе привязки к базе, компилятор остаётся независимым от неё.
func (b *WhereBuilder) BuildWhereClause(conds *Conditions) (string, []string) {
	if conds == nil {
		return "TRUE", nil
	}

	andParts := b.buildBranch(conds.And)
	orParts := b.buildBranch(conds.Or)

	if len(andParts) == 0 && len(orParts) == 0 {
		return "FALSE", nil
	}

	var clause strings.Builder
	if len(andParts) > 0 {
		clause.WriteString("(" + strings.Join(andParts, " AND ") + ")")
	}
	if len(andParts) > 0 && len(orParts) > 0 {
		clause.WriteString(" AND ")
	}
	if len(orParts) > 0 {
		clause.WriteString("(" + strings.Join(orParts, " OR ") + ")")
	}

	return clause.String(), b.Params
}

// buildBranch компилирует одну ветвь (AND или OR) в список условий.
// Соединение условий связкой — забота вызывающего BuildWhereClause.
func (b *WhereBuilder) buildBranch(conds []Condition) []string {
	var parts []string

	for _, cond := range conds {
		column := casing.ToSnake(cond.Field)

		var placeholder string
		switch cond.Operator {
		case OpIn:
			placeholder = fmt.Sprintf("ANY($%d)", b.counter)
		case OpNotIn:
			placeholder = fmt.Sprintf("ALL($%d)", b.counter)
		case OpIs, OpIsNot:
			if isNull(cond.Value) {
				// NULL-сравнение: литерал NULL в SQL, без плейсхолдера,
				// счётчик и список параметров не продвигаются
				parts = append(parts, fmt.Sprintf("(%s.%s %s NULL)",
					b.alias, column, cond.Operator.Symbol()))
				continue
			}
			placeholder = fmt.Sprintf("$%d", b.counter)
		default:
			placeholder = fmt.Sprintf("$%d", b.counter)
		}

		parts = append(parts, fmt.Sprintf("(%s.%s %s %s)",
			b.alias, column, cond.Operator.Symbol(), placeholder))
		b.counter++
		b.Params = append(b.Params, rawLiteral(cond.Value))
	}

	return parts
}

// isNull возвращает true для JSON null (и отсутствующего значения).
func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// rawLiteral возвращает строковую форму значения условия.
// JSON-строка разворачивается без кавычек, прочие значения —
// их JSON-текст (массивы, числа, null).
func rawLiteral(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
