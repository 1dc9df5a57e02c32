package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// --- Тесты Coerce ---

// TestCoerce_UUID проверяет, что UUID-строка становится uuid.UUID.
func TestCoerce_UUID(t *testing.T) {
	v, err := Coerce("290e6b9e-8c68-4d6a-8f0a-5b1f2f5f2c11")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		t.Fatalf("тип = %T, ожидался uuid.UUID", v)
	}
	if id.String() != "290e6b9e-8c68-4d6a-8f0a-5b1f2f5f2c11" {
		t.Errorf("значение = %s, round-trip нарушен", id)
	}
}

// TestCoerce_Int проверяет приведение целого числа.
func TestCoerce_Int(t *testing.T) {
	v, err := Coerce("42")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if n, ok := v.(int64); !ok || n != 42 {
		t.Errorf("значение = %v (%T), ожидался int64(42)", v, v)
	}
}

// TestCoerce_Float проверяет приведение числа с плавающей точкой.
func TestCoerce_Float(t *testing.T) {
	v, err := Coerce("3.14")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if f, ok := v.(float64); !ok || f != 3.14 {
		t.Errorf("значение = %v (%T), ожидался float64(3.14)", v, v)
	}
}

// TestCoerce_Bool проверяет приведение булевых литералов.
func TestCoerce_Bool(t *testing.T) {
	v, err := Coerce("true")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if b, ok := v.(bool); !ok || !b {
		t.Errorf("значение = %v (%T), ожидался true", v, v)
	}

	v, err = Coerce("false")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if b, ok := v.(bool); !ok || b {
		t.Errorf("значение = %v (%T), ожидался false", v, v)
	}
}

// TestCoerce_Timestamp проверяет приведение RFC3339-метки времени.
func TestCoerce_Timestamp(t *testing.T) {
	v, err := Coerce("2024-01-15T10:30:00Z")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	ts, ok := v.(time.Time)
	if !ok {
		t.Fatalf("тип = %T, ожидался time.Time", v)
	}
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("значение = %v, ожидалось %v", ts, want)
	}
}

// TestCoerce_PlainString проверяет запасной вариант: обычная строка
// остаётся строкой.
func TestCoerce_PlainString(t *testing.T) {
	v, err := Coerce("report.pdf")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if s, ok := v.(string); !ok || s != "report.pdf" {
		t.Errorf("значение = %v (%T), ожидалась строка 'report.pdf'", v, v)
	}
}

// TestCoerce_Null проверяет, что JSON null возвращает ErrNullLiteral.
func TestCoerce_Null(t *testing.T) {
	_, err := Coerce("null")
	if !errors.Is(err, ErrNullLiteral) {
		t.Errorf("err = %v, ожидался ErrNullLiteral", err)
	}
}

// TestCoerce_QuotedString проверяет рекурсию по развёрнутой JSON-строке:
// число в кавычках всё равно становится числом.
func TestCoerce_QuotedString(t *testing.T) {
	v, err := Coerce(`"42"`)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if n, ok := v.(int64); !ok || n != 42 {
		t.Errorf("значение = %v (%T), ожидался int64(42)", v, v)
	}
}

// TestCoerce_UUIDArray проверяет вывод типа массива по первому элементу.
func TestCoerce_UUIDArray(t *testing.T) {
	v, err := Coerce(`["290e6b9e-8c68-4d6a-8f0a-5b1f2f5f2c11","4c1f74bd-9d2b-4a7e-98fb-6b40c5b42a02"]`)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	ids, ok := v.([]uuid.UUID)
	if !ok {
		t.Fatalf("тип = %T, ожидался []uuid.UUID", v)
	}
	if len(ids) != 2 {
		t.Errorf("len = %d, ожидался 2", len(ids))
	}
}

// TestCoerce_UUIDArrayInvalidElement проверяет, что некорректный элемент
// массива UUID отвергается, а не отбрасывается.
func TestCoerce_UUIDArrayInvalidElement(t *testing.T) {
	_, err := Coerce(`["290e6b9e-8c68-4d6a-8f0a-5b1f2f5f2c11","не-uuid"]`)
	if err == nil {
		t.Error("ожидалась ошибка для массива UUID с недопустимым элементом")
	}
}

// TestCoerce_IntArray проверяет массив целых чисел.
func TestCoerce_IntArray(t *testing.T) {
	v, err := Coerce(`[1,2,3]`)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	nums, ok := v.([]int64)
	if !ok {
		t.Fatalf("тип = %T, ожидался []int64", v)
	}
	if len(nums) != 3 || nums[0] != 1 || nums[2] != 3 {
		t.Errorf("значение = %v, ожидалось [1 2 3]", nums)
	}
}

// TestCoerce_StringArray проверяет массив строк.
func TestCoerce_StringArray(t *testing.T) {
	v, err := Coerce(`["png","jpg"]`)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	strs, ok := v.([]string)
	if !ok {
		t.Fatalf("тип = %T, ожидался []string", v)
	}
	if len(strs) != 2 || strs[0] != "png" || strs[1] != "jpg" {
		t.Errorf("значение = %v, ожидалось [png jpg]", strs)
	}
}

// TestCoerce_EmptyArray проверяет пустой массив.
func TestCoerce_EmptyArray(t *testing.T) {
	v, err := Coerce(`[]`)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	arr, ok := v.([]any)
	if !ok || len(arr) != 0 {
		t.Errorf("значение = %v (%T), ожидался пустой массив", v, v)
	}
}

// TestCoerce_LeadingZeros проверяет, что строка с ведущими нулями,
// парсящаяся как число, становится числом (документированное следствие
// порядка проверок).
func TestCoerce_LeadingZeros(t *testing.T) {
	v, err := Coerce("007")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if n, ok := v.(int64); !ok || n != 7 {
		t.Errorf("значение = %v (%T), ожидался int64(7)", v, v)
	}
}
