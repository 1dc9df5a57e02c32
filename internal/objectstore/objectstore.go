// Package objectstore — абстракция над S3-совместимым объектным хранилищем.
//
// Интерфейс Store позволяет подменять реализацию в тестах;
// единственная боевая реализация — s3Store поверх aws-sdk-go-v2.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrNotFound возвращается, когда объект с указанным ключом отсутствует.
var ErrNotFound = errors.New("объект не найден")

// ObjectInfo — элемент листинга бакета.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ListPage — страница листинга объектов.
type ListPage struct {
	Objects     []ObjectInfo
	NextToken   string
	IsTruncated bool
}

// GetResult — содержимое объекта. Body обязан быть закрыт вызывающим.
type GetResult struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Store — операции объектного хранилища, нужные сервисам.
type Store interface {
	// Put загружает объект. public управляет canned ACL.
	Put(ctx context.Context, key string, body []byte, contentType string, public bool) error
	// Get возвращает объект или ErrNotFound.
	Get(ctx context.Context, key string) (*GetResult, error)
	// Delete удаляет объект. Удаление несуществующего ключа — не ошибка.
	Delete(ctx context.Context, key string) error
	// List возвращает страницу листинга по префиксу.
	// Пустой token — первая страница.
	List(ctx context.Context, prefix, token string) (*ListPage, error)
	// Head возвращает content-type и размер объекта или ErrNotFound.
	Head(ctx context.Context, key string) (contentType string, size int64, err error)
}

// readinessProbeKey — ключ-зонд для проверки доступности хранилища.
// Объект не обязан существовать: ErrNotFound означает, что бакет отвечает.
const readinessProbeKey = ".fv-readiness"

// ReadinessChecker — проверка доступности объектного хранилища
// для readiness probe. Реализует интерфейс handlers.ReadinessChecker.
type ReadinessChecker struct {
	store Store
}

// NewReadinessChecker создаёт проверку доступности хранилища.
func NewReadinessChecker(store Store) *ReadinessChecker {
	return &ReadinessChecker{store: store}
}

// CheckReady выполняет HEAD ключа-зонда.
// Возвращает статус ("ok", "fail") и сообщение.
func (c *ReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, _, err := c.store.Head(ctx, readinessProbeKey); err != nil && !errors.Is(err, ErrNotFound) {
		return "fail", fmt.Sprintf("объектное хранилище недоступно: %v", err)
	}
	return "ok", "бакет отвечает"
}
