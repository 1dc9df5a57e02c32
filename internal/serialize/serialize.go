// Пакет serialize — преобразование реляционных строк в документы
// для внешней границы.
//
// Каждый столбец диспетчеризуется по объявленному типу хранения
// (закрытое перечисление ColumnType, выведенное из OID PostgreSQL) в
// JSON-представление, после чего все ключи документа рекурсивно
// переписываются из snake_case в camelCase.
package serialize

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/bigkaa/filevault/internal/casing"
)

// ColumnType — объявленный тип хранения столбца.
// Закрытое перечисление: новый тип в схеме — видимый на компиляции
// пробел в switch convertValue, а не молчаливый catch-all.
type ColumnType int

// Поддерживаемые типы столбцов.
const (
	// TypeUnsupported — тип вне перечисления, сериализуется в null.
	TypeUnsupported ColumnType = iota
	TypeUUID
	TypeText
	TypeTimestamp
	TypeDate
	TypeSmallInt
	TypeInteger
	TypeBigInt
	TypeReal
	TypeDouble
	TypeBool
	TypeJSON
)

// Column — имя и объявленный тип одного столбца результата.
type Column struct {
	Name string
	Type ColumnType
}

// TypeFromOID выводит ColumnType из OID типа PostgreSQL.
// Неизвестный OID — TypeUnsupported.
func TypeFromOID(oid uint32) ColumnType {
	switch oid {
	case pgtype.UUIDOID:
		return TypeUUID
	case pgtype.TextOID, pgtype.VarcharOID, pgtype.BPCharOID, pgtype.NameOID:
		return TypeText
	case pgtype.TimestamptzOID, pgtype.TimestampOID:
		return TypeTimestamp
	case pgtype.DateOID:
		return TypeDate
	case pgtype.Int2OID:
		return TypeSmallInt
	case pgtype.Int4OID:
		return TypeInteger
	case pgtype.Int8OID:
		return TypeBigInt
	case pgtype.Float4OID:
		return TypeReal
	case pgtype.Float8OID:
		return TypeDouble
	case pgtype.BoolOID:
		return TypeBool
	case pgtype.JSONOID, pgtype.JSONBOID:
		return TypeJSON
	default:
		return TypeUnsupported
	}
}

// Row сериализует одну строку: значения values в порядке столбцов cols.
// NULL-значение столбца — всегда null в документе, независимо от типа.
// Ключи результата — в camelCase.
func Row(cols []Column, values []any) map[string]any {
	doc := make(map[string]any, len(cols))
	for i, col := range cols {
		var v any
		if i < len(values) {
			v = values[i]
		}
		doc[col.Name] = convertValue(col.Type, v)
	}
	return camelKeys(doc).(map[string]any)
}

// List сериализует набор строк. Пустой набор — пустой список документов.
func List(cols []Column, rows [][]any) []map[string]any {
	docs := make([]map[string]any, 0, len(rows))
	for _, values := range rows {
		docs = append(docs, Row(cols, values))
	}
	return docs
}

// FromRows сериализует результат pgx-запроса.
// Типы столбцов выводятся из описаний полей (OID), значения — через
// rows.Values(). Вызывающий код обязан закрыть rows.
func FromRows(rows pgx.Rows) ([]map[string]any, error) {
	descs := rows.FieldDescriptions()
	cols := make([]Column, len(descs))
	for i, d := range descs {
		cols[i] = Column{Name: string(d.Name), Type: TypeFromOID(d.DataTypeOID)}
	}

	docs := []map[string]any{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		docs = append(docs, Row(cols, values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// convertValue переводит значение столбца в JSON-представление
// по объявленному типу. Явная ветвь на каждый тип перечисления.
func convertValue(t ColumnType, v any) any {
	if v == nil {
		return nil
	}

	switch t {
	case TypeUUID:
		return uuidString(v)
	case TypeText:
		return textString(v)
	case TypeTimestamp:
		if ts, ok := v.(time.Time); ok {
			return ts.UTC().Format(time.RFC3339)
		}
		return nil
	case TypeDate:
		if ts, ok := v.(time.Time); ok {
			return ts.Format("2006-01-02")
		}
		return nil
	case TypeSmallInt, TypeInteger, TypeBigInt:
		return intValue(v)
	case TypeReal, TypeDouble:
		return floatValue(v)
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b
		}
		return nil
	case TypeJSON:
		return jsonValue(v)
	case TypeUnsupported:
		return nil
	default:
		return nil
	}
}

// uuidString приводит значение UUID-столбца к строковой форме.
// pgx возвращает UUID как [16]byte; строковая форма принимается как есть.
func uuidString(v any) any {
	switch u := v.(type) {
	case [16]byte:
		return uuid.UUID(u).String()
	case uuid.UUID:
		return u.String()
	case string:
		return u
	default:
		return nil
	}
}

// textString приводит значение текстового столбца к строке.
func textString(v any) any {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return nil
	}
}

// intValue приводит целочисленное значение к int64.
func intValue(v any) any {
	switch n := v.(type) {
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return nil
	}
}

// floatValue приводит значение с плавающей точкой к float64.
// NaN и Inf не представимы в JSON — защитный откат в 0
// (на практике не ожидается).
func floatValue(v any) any {
	var f float64
	switch n := v.(type) {
	case float32:
		f = float64(n)
	case float64:
		f = n
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return float64(0)
	}
	return f
}

// jsonValue пропускает значение JSON/JSONB-столбца как есть.
// Сырые байты декодируются; уже декодированное значение не трогается.
func jsonValue(v any) any {
	if b, ok := v.([]byte); ok {
		var decoded any
		if err := json.Unmarshal(b, &decoded); err != nil {
			return nil
		}
		return decoded
	}
	return v
}

// camelKeys рекурсивно переписывает ключи объектов в camelCase.
// Вложенные объекты и массивы объектов обходятся, скаляры и массивы
// скаляров проходят без изменений.
func camelKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[casing.ToCamel(k)] = camelKeys(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = camelKeys(inner)
		}
		return out
	default:
		return v
	}
}
