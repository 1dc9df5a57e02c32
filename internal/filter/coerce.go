// coerce.go — приведение строковых литералов фильтров к нативным типам.
//
// Значения условий приходят с границы в строковой форме. Перед передачей
// в PostgreSQL каждый литерал приводится к наиболее специфичному типу:
// строка, которую можно однозначно распарсить как UUID/число/bool/timestamp,
// никогда не остаётся строкой — иначе pgx получит несовпадение типов
// на границе с базой.
package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNullLiteral — литерал является JSON null: параметр не создаётся,
// вызывающий код обязан обработать этот случай отдельно.
var ErrNullLiteral = errors.New("null-литерал не образует параметра")

// Coerce приводит строковый литерал к нативно типизированному параметру.
//
// Порядок проверок (первое совпадение выигрывает):
//  1. UUID
//  2. int64 (base 10)
//  3. float64
//  4. bool ("true"/"false")
//  5. JSON: массив → вывод типа по первому элементу; строка → рекурсия
//     по развёрнутому значению; null → ErrNullLiteral; прочее — как есть
//  6. timestamp RFC3339
//  7. исходная строка (запасной вариант, гарантирует тотальность)
//
// Ошибка возвращается только для ErrNullLiteral и для массива UUID
// с элементом, не являющимся UUID (ошибка вызывающего кода).
func Coerce(literal string) (any, error) {
	if id, err := uuid.Parse(literal); err == nil {
		return id, nil
	}
	if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(literal, 64); err == nil {
		return f, nil
	}
	if literal == "true" {
		return true, nil
	}
	if literal == "false" {
		return false, nil
	}

	var value any
	if err := json.Unmarshal([]byte(literal), &value); err == nil {
		switch v := value.(type) {
		case []any:
			return coerceArray(v)
		case string:
			return Coerce(v)
		case nil:
			return nil, ErrNullLiteral
		default:
			// Прочие JSON-скаляры (числа и bool перехвачены выше) и объекты
			return value, nil
		}
	}

	if ts, err := time.Parse(time.RFC3339, literal); err == nil {
		return ts, nil
	}

	return literal, nil
}

// coerceArray выводит тип массива по первому элементу.
// Пустой массив — пустой массив без фиксированного типа элементов.
// Первый элемент UUID → весь массив приводится к []uuid.UUID, элемент
// не-UUID при этом — ошибка (отвергается, а не отбрасывается).
// Первый элемент int → []int64. Иначе — []string со срезанием кавычек.
func coerceArray(arr []any) (any, error) {
	if len(arr) == 0 {
		return arr, nil
	}

	if first, ok := arr[0].(string); ok {
		if _, err := uuid.Parse(first); err == nil {
			ids := make([]uuid.UUID, 0, len(arr))
			for _, el := range arr {
				s, ok := el.(string)
				if !ok {
					return nil, fmt.Errorf("массив UUID содержит элемент %v (не строка)", el)
				}
				id, err := uuid.Parse(s)
				if err != nil {
					return nil, fmt.Errorf("массив UUID содержит недопустимый элемент %q: %w", s, err)
				}
				ids = append(ids, id)
			}
			return ids, nil
		}
	}

	if firstInt, ok := parseArrayInt(arr[0]); ok {
		nums := make([]int64, 0, len(arr))
		nums = append(nums, firstInt)
		for _, el := range arr[1:] {
			n, ok := parseArrayInt(el)
			if !ok {
				// Вывод типа только по первому элементу: несовместимый
				// хвостовой элемент приводится через текстовую форму
				n, _ = strconv.ParseInt(jsonText(el), 10, 64)
			}
			nums = append(nums, n)
		}
		return nums, nil
	}

	strs := make([]string, 0, len(arr))
	for _, el := range arr {
		strs = append(strs, strings.ReplaceAll(jsonText(el), `"`, ""))
	}
	return strs, nil
}

// parseArrayInt пытается получить int64 из элемента JSON-массива.
func parseArrayInt(el any) (int64, bool) {
	switch v := el.(type) {
	case float64:
		n := int64(v)
		if float64(n) == v {
			return n, true
		}
		return 0, false
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// jsonText возвращает текстовую JSON-форму элемента массива.
func jsonText(el any) string {
	b, err := json.Marshal(el)
	if err != nil {
		return ""
	}
	return string(b)
}
