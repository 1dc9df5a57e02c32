package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/filevault/internal/domain/model"
)

// TestCacheService_GetSet проверяет базовые операции Get/Set.
func TestCacheService_GetSet(t *testing.T) {
	cache := NewCacheService(100, 5*time.Minute)
	id := uuid.New()

	record := &model.FileRecord{
		ID:    id,
		Title: "test.txt",
		Type:  "txt",
		Size:  1024,
	}

	// Cache miss
	_, ok := cache.Get(id)
	if ok {
		t.Fatal("ожидался cache miss для нового ключа")
	}

	// Set + cache hit
	cache.Set(id, record)
	got, ok := cache.Get(id)
	if !ok {
		t.Fatal("ожидался cache hit после Set")
	}
	if got.ID != id {
		t.Errorf("ID = %v, ожидался %v", got.ID, id)
	}
	if got.Title != "test.txt" {
		t.Errorf("Title = %q, ожидался %q", got.Title, "test.txt")
	}
}

// TestCacheService_Delete проверяет удаление из кэша (инвалидация).
func TestCacheService_Delete(t *testing.T) {
	cache := NewCacheService(100, 5*time.Minute)
	id := uuid.New()

	cache.Set(id, &model.FileRecord{ID: id, Title: "delete-me"})

	// Проверяем что запись есть
	if _, ok := cache.Get(id); !ok {
		t.Fatal("ожидался cache hit перед удалением")
	}

	// Удаляем
	cache.Delete(id)

	// Проверяем что записи больше нет
	if _, ok := cache.Get(id); ok {
		t.Fatal("ожидался cache miss после Delete")
	}
}

// TestCacheService_TTLExpiration проверяет автоматическое истечение TTL.
func TestCacheService_TTLExpiration(t *testing.T) {
	// Короткий TTL = 50ms для теста
	cache := NewCacheService(100, 50*time.Millisecond)
	id := uuid.New()

	cache.Set(id, &model.FileRecord{ID: id, Title: "ttl-test"})

	// Сразу после Set — должен быть hit
	if _, ok := cache.Get(id); !ok {
		t.Fatal("ожидался cache hit сразу после Set")
	}

	// Ждём истечения TTL
	time.Sleep(100 * time.Millisecond)

	// После истечения TTL — должен быть miss
	if _, ok := cache.Get(id); ok {
		t.Fatal("ожидался cache miss после истечения TTL")
	}
}

// TestCacheService_Update проверяет обновление записи в кэше.
func TestCacheService_Update(t *testing.T) {
	cache := NewCacheService(100, 5*time.Minute)
	id := uuid.New()

	cache.Set(id, &model.FileRecord{ID: id, Title: "old.txt"})
	cache.Set(id, &model.FileRecord{ID: id, Title: "new.txt"})

	got, ok := cache.Get(id)
	if !ok {
		t.Fatal("ожидался cache hit после обновления")
	}
	if got.Title != "new.txt" {
		t.Errorf("Title = %q, ожидался %q", got.Title, "new.txt")
	}
}
