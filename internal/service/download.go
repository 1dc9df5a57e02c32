// download.go — сервис скачивания файлов из объектного хранилища.
// Pipeline: FileRecord (cache/DB) → Get объекта из S3.
// Ленивая очистка: если объект отсутствует, запись метаданных удаляется.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/filevault/internal/domain/model"
	"github.com/bigkaa/filevault/internal/objectstore"
	"github.com/bigkaa/filevault/internal/repository"
)

// Ошибки download service.
var (
	// ErrNotFound — файл не найден (нет записи или объект отсутствует).
	ErrNotFound = errors.New("файл не найден")
	// ErrIsFolder — запись является папкой, у папки нет содержимого.
	ErrIsFolder = errors.New("папка не имеет содержимого для скачивания")
)

// Prometheus-метрики download.
var (
	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fv_downloads_total",
		Help: "Общее количество запросов на скачивание (по статусу).",
	}, []string{"status"})

	lazyCleanupTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fv_lazy_cleanup_total",
		Help: "Количество операций lazy cleanup (объект отсутствует в хранилище).",
	})
)

// DownloadService — сервис скачивания файлов.
type DownloadService struct {
	fileRepo repository.FileRepository
	cache    *CacheService
	store    objectstore.Store
	logger   *slog.Logger
}

// NewDownloadService создаёт сервис скачивания.
func NewDownloadService(
	fileRepo repository.FileRepository,
	cache *CacheService,
	store objectstore.Store,
	logger *slog.Logger,
) *DownloadService {
	return &DownloadService{
		fileRepo: fileRepo,
		cache:    cache,
		store:    store,
		logger:   logger.With(slog.String("component", "download_service")),
	}
}

// Download возвращает содержимое файла владельца.
//
// Pipeline:
//  1. Получить FileRecord (из кэша или БД)
//  2. Папка содержимого не имеет — ErrIsFolder
//  3. Get объекта из хранилища
//  4. Объект отсутствует → lazy cleanup (удалить запись + инвалидировать кэш)
//
// Body результата обязан быть закрыт вызывающим.
func (ds *DownloadService) Download(ctx context.Context, ownerID, fileID uuid.UUID) (*objectstore.GetResult, *model.FileRecord, error) {
	// 1. Получить FileRecord (кэш или БД)
	record, err := ds.getFileRecord(ctx, fileID, ownerID)
	if err != nil {
		downloadsTotal.WithLabelValues("not_found").Inc()
		return nil, nil, err
	}

	// 2. У папки нет объекта
	if record.IsFolder() {
		downloadsTotal.WithLabelValues("is_folder").Inc()
		return nil, nil, ErrIsFolder
	}

	// 3. Get объекта из хранилища
	result, err := ds.store.Get(ctx, record.ObjectKey())
	if err != nil {
		// 4. Объект физически отсутствует → lazy cleanup
		if errors.Is(err, objectstore.ErrNotFound) {
			ds.logger.Warn("Объект отсутствует в хранилище, выполняется lazy cleanup",
				slog.String("file_id", fileID.String()),
				slog.String("key", record.ObjectKey()),
			)
			ds.lazyCleanup(ctx, fileID, ownerID)
			downloadsTotal.WithLabelValues("lazy_cleanup").Inc()
			return nil, nil, ErrNotFound
		}
		downloadsTotal.WithLabelValues("error").Inc()
		return nil, nil, fmt.Errorf("ошибка чтения объекта %q: %w", record.ObjectKey(), err)
	}

	downloadsTotal.WithLabelValues("success").Inc()
	ds.logger.Debug("Download завершён",
		slog.String("file_id", fileID.String()),
		slog.Int64("bytes", result.Size),
	)
	return result, record, nil
}

// getFileRecord получает FileRecord из кэша или БД.
func (ds *DownloadService) getFileRecord(ctx context.Context, fileID, ownerID uuid.UUID) (*model.FileRecord, error) {
	// Проверяем кэш; запись в кэше всё равно сверяется с владельцем
	if record, ok := ds.cache.Get(fileID); ok {
		if record.OwnerID != ownerID {
			return nil, ErrNotFound
		}
		return record, nil
	}

	// Cache miss — запрос к БД
	record, err := ds.fileRepo.GetOwned(ctx, fileID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение записи файла: %w", err)
	}

	// Сохраняем в кэш
	ds.cache.Set(fileID, record)

	return record, nil
}

// lazyCleanup удаляет запись метаданных и инвалидирует кэш.
// Выполняется, когда объект физически отсутствует в хранилище.
func (ds *DownloadService) lazyCleanup(ctx context.Context, fileID, ownerID uuid.UUID) {
	lazyCleanupTotal.Inc()

	if err := ds.fileRepo.DeleteOwned(ctx, fileID, ownerID); err != nil {
		ds.logger.Error("Ошибка lazy cleanup: не удалось удалить запись файла",
			slog.String("file_id", fileID.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	// Инвалидируем кэш
	ds.cache.Delete(fileID)

	ds.logger.Info("Lazy cleanup завершён: запись файла удалена",
		slog.String("file_id", fileID.String()),
	)
}
