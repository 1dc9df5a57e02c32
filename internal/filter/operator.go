// operator.go — закрытое множество операторов фильтрации.
package filter

import (
	"encoding/json"
	"fmt"
)

// Operator — оператор условия фильтрации.
type Operator string

// Допустимые операторы фильтрации.
const (
	OpEq    Operator = "eq"
	OpNeq   Operator = "neq"
	OpGt    Operator = "gt"
	OpLt    Operator = "lt"
	OpGte   Operator = "gte"
	OpLte   Operator = "lte"
	OpIs    Operator = "is"
	OpIsNot Operator = "is-not"
	OpLike  Operator = "like"
	OpILike Operator = "ilike"
	OpIn    Operator = "in"
	OpNotIn Operator = "not-in"
)

// symbols — соответствие оператора SQL-символу.
// Для in/not-in символ =/!= сочетается с обёрткой ANY/ALL:
// "x = ANY($n)" — членство, "x != ALL($n)" — отсутствие членства.
var symbols = map[Operator]string{
	OpEq:    "=",
	OpNeq:   "!=",
	OpGt:    ">",
	OpLt:    "<",
	OpGte:   ">=",
	OpLte:   "<=",
	OpIs:    "IS NOT DISTINCT FROM",
	OpIsNot: "IS DISTINCT FROM",
	OpLike:  "LIKE",
	OpILike: "ILIKE",
	OpIn:    "=",
	OpNotIn: "!=",
}

// Symbol возвращает SQL-символ оператора.
func (o Operator) Symbol() string {
	return symbols[o]
}

// Valid возвращает true для оператора из допустимого множества.
func (o Operator) Valid() bool {
	_, ok := symbols[o]
	return ok
}

// UnmarshalJSON десериализует оператор со строгой проверкой множества.
// Неизвестный оператор — ошибка (фильтр будет отброшен на границе).
func (o *Operator) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("оператор фильтра: %w", err)
	}
	op := Operator(s)
	if !op.Valid() {
		return fmt.Errorf("недопустимый оператор фильтра: %q", s)
	}
	*o = op
	return nil
}
