package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/bigkaa/filevault/internal/domain/model"
	"github.com/bigkaa/filevault/internal/objectstore"
	"github.com/bigkaa/filevault/internal/repository"
)

// mockFileRepo — мок FileRepository для unit-тестов.
type mockFileRepo struct {
	insertFn        func(ctx context.Context, f *model.FileRecord) (bool, error)
	getOwnedFn      func(ctx context.Context, id, ownerID uuid.UUID) (*model.FileRecord, error)
	deleteOwnedFn   func(ctx context.Context, id, ownerID uuid.UUID) error
	listFn          func(ctx context.Context, params repository.ListParams) ([]map[string]any, error)
	distinctPathsFn func(ctx context.Context, ownerID uuid.UUID) ([]string, error)

	// inserted — записи, переданные в Insert, в порядке вызовов
	inserted []*model.FileRecord
}

func (m *mockFileRepo) Insert(ctx context.Context, f *model.FileRecord) (bool, error) {
	m.inserted = append(m.inserted, f)
	if m.insertFn != nil {
		return m.insertFn(ctx, f)
	}
	return true, nil
}

func (m *mockFileRepo) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*model.FileRecord, error) {
	if m.getOwnedFn != nil {
		return m.getOwnedFn(ctx, id, ownerID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockFileRepo) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error {
	if m.deleteOwnedFn != nil {
		return m.deleteOwnedFn(ctx, id, ownerID)
	}
	return nil
}

func (m *mockFileRepo) List(ctx context.Context, params repository.ListParams) ([]map[string]any, error) {
	if m.listFn != nil {
		return m.listFn(ctx, params)
	}
	return []map[string]any{}, nil
}

func (m *mockFileRepo) DistinctPaths(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	if m.distinctPathsFn != nil {
		return m.distinctPathsFn(ctx, ownerID)
	}
	return nil, nil
}

// mockTxManager — мок TxManager: вызывает fn с заданным репозиторием
// и считает открытые транзакции.
type mockTxManager struct {
	repo repository.FileRepository

	// txCount — количество вызовов WithFiles
	txCount int
}

func (m *mockTxManager) WithFiles(ctx context.Context, fn func(repository.FileRepository) error) error {
	m.txCount++
	return fn(m.repo)
}

// putCall — записанный вызов Put мок-хранилища.
type putCall struct {
	Key         string
	Body        []byte
	ContentType string
	Public      bool
}

// mockStore — мок objectstore.Store с записью вызовов.
type mockStore struct {
	putFn    func(ctx context.Context, key string, body []byte, contentType string, public bool) error
	getFn    func(ctx context.Context, key string) (*objectstore.GetResult, error)
	deleteFn func(ctx context.Context, key string) error
	listFn   func(ctx context.Context, prefix, token string) (*objectstore.ListPage, error)
	headFn   func(ctx context.Context, key string) (string, int64, error)

	puts    []putCall
	deletes []string
}

func (m *mockStore) Put(ctx context.Context, key string, body []byte, contentType string, public bool) error {
	m.puts = append(m.puts, putCall{Key: key, Body: body, ContentType: contentType, Public: public})
	if m.putFn != nil {
		return m.putFn(ctx, key, body, contentType, public)
	}
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (*objectstore.GetResult, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, objectstore.ErrNotFound
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockStore) List(ctx context.Context, prefix, token string) (*objectstore.ListPage, error) {
	if m.listFn != nil {
		return m.listFn(ctx, prefix, token)
	}
	return &objectstore.ListPage{}, nil
}

func (m *mockStore) Head(ctx context.Context, key string) (string, int64, error) {
	if m.headFn != nil {
		return m.headFn(ctx, key)
	}
	return "", 0, nil
}
