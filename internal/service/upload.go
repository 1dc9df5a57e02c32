// upload.go — сервис загрузки и удаления файлов.
//
// Загрузка: буферизация части, SHA-256, запись объекта в S3,
// вставка метаданных с ON CONFLICT DO NOTHING. Все части одного
// запроса делят одну транзакцию метаданных; при её откате записанные
// объекты удаляются компенсирующим проходом.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/filevault/internal/domain/model"
	"github.com/bigkaa/filevault/internal/objectstore"
	"github.com/bigkaa/filevault/internal/repository"
)

// Prometheus-метрики загрузки.
var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fv_uploads_total",
		Help: "Общее количество загрузок файлов по статусу.",
	}, []string{"status"})
	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fv_upload_bytes_total",
		Help: "Общий объём загруженных данных в байтах.",
	})
	orphanObjectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fv_orphan_objects_total",
		Help: "Количество объектов, оставшихся в хранилище после неудачного компенсирующего удаления.",
	})
)

// Ошибки загрузки.
var (
	// ErrFileTooLarge — размер файла превышает лимит
	ErrFileTooLarge = errors.New("размер файла превышает максимально допустимый")
	// ErrEmptyUpload — в запросе нет ни одной части с именем файла
	ErrEmptyUpload = errors.New("нет файлов для загрузки")
)

// Part — одна часть multipart-загрузки.
type Part struct {
	// Filename — имя файла из части (пустое — часть пропускается)
	Filename string
	// ContentType — MIME-тип из заголовка части
	ContentType string
	// Reader — поток данных части
	Reader io.Reader
}

// UploadedFile — результат загрузки одной части.
type UploadedFile struct {
	Record *model.FileRecord
	// Inserted — false, если запись уже существовала (дубликат)
	Inserted bool
}

// UploadService — сервис загрузки и удаления файлов.
type UploadService struct {
	txm         repository.TxManager
	store       objectstore.Store
	cache       *CacheService
	maxFileSize int64
	logger      *slog.Logger
}

// NewUploadService создаёт сервис загрузки.
func NewUploadService(
	txm repository.TxManager,
	store objectstore.Store,
	cache *CacheService,
	maxFileSize int64,
	logger *slog.Logger,
) *UploadService {
	return &UploadService{
		txm:         txm,
		store:       store,
		cache:       cache,
		maxFileSize: maxFileSize,
		logger:      logger.With(slog.String("component", "upload_service")),
	}
}

// Upload загружает набор частей в хранилище владельца по пути path.
//
// Все части запроса обрабатываются в одной транзакции метаданных:
// фиксация происходит только после обработки последней части. Ошибка
// объектного хранилища пропускает только свою часть; ошибка вставки
// метаданных откатывает транзакцию целиком, и все записанные в рамках
// запроса объекты удаляются компенсирующим проходом.
//
// Поток для каждой части:
//  1. Части без имени файла пропускаются
//  2. Буферизация содержимого, проверка размера
//  3. SHA-256 содержимого
//  4. Определение типа файла (MIME, затем расширение)
//  5. Запись объекта в S3 (ACL по признаку публичности)
//  6. Вставка метаданных с ON CONFLICT DO NOTHING
func (s *UploadService) Upload(
	ctx context.Context,
	ownerID uuid.UUID,
	path string,
	isPublic bool,
	parts []Part,
) ([]UploadedFile, error) {
	var results []UploadedFile
	var firstErr error
	// Ключи объектов, записанных в рамках этого запроса: при откате
	// транзакции все они подлежат компенсирующему удалению
	var putKeys []string

	txErr := s.txm.WithFiles(ctx, func(repo repository.FileRepository) error {
		for _, part := range parts {
			// 1. Пропускаем части без имени файла (поля формы)
			if part.Filename == "" {
				continue
			}

			uploaded, key, err := s.uploadOne(ctx, repo, ownerID, path, isPublic, part)
			if key != "" {
				putKeys = append(putKeys, key)
			}
			if err != nil {
				uploadsTotal.WithLabelValues("error").Inc()
				s.logger.Error("Ошибка загрузки части",
					slog.String("filename", part.Filename),
					slog.String("error", err.Error()),
				)
				// Ошибка вставки делает транзакцию непригодной —
				// прерываем запрос; остальные ошибки пропускают
				// только свою часть
				if errors.Is(err, errInsertFailed) {
					return fmt.Errorf("ошибка загрузки %q: %w", part.Filename, err)
				}
				if firstErr == nil {
					firstErr = fmt.Errorf("ошибка загрузки %q: %w", part.Filename, err)
				}
				continue
			}
			results = append(results, *uploaded)
		}
		return nil
	})
	if txErr != nil {
		// Откат метаданных уже выполнен — убираем записанные объекты
		s.compensate(ctx, putKeys)
		return nil, txErr
	}

	if len(results) == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, ErrEmptyUpload
	}
	return results, nil
}

// compensate удаляет объекты, записанные в рамках откатившегося запроса.
func (s *UploadService) compensate(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			orphanObjectsTotal.Inc()
			s.logger.Error("Компенсирующее удаление объекта не удалось, объект осиротел",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}
}

// errInsertFailed помечает ошибку вставки метаданных: после неё
// транзакция запроса непригодна и подлежит откату.
var errInsertFailed = errors.New("ошибка вставки метаданных")

// uploadOne обрабатывает одну часть multipart-загрузки в рамках
// транзакции запроса. Возвращает ключ записанного объекта (если запись
// в хранилище состоялась) для компенсирующего удаления при откате.
func (s *UploadService) uploadOne(
	ctx context.Context,
	repo repository.FileRepository,
	ownerID uuid.UUID,
	path string,
	isPublic bool,
	part Part,
) (*UploadedFile, string, error) {
	// 2. Буферизуем содержимое; лимит проверяем с запасом в один байт,
	// чтобы отличить ровно-лимитный файл от превышения
	data, err := io.ReadAll(io.LimitReader(part.Reader, s.maxFileSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("ошибка чтения данных: %w", err)
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, "", ErrFileTooLarge
	}

	// 3. Контрольная сумма содержимого
	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	// 4. Тип файла: сначала MIME части, затем расширение имени
	fileType := model.InferType(part.ContentType, part.Filename)

	record := &model.FileRecord{
		ID:        uuid.New(),
		Title:     part.Filename,
		OwnerID:   ownerID,
		Size:      int64(len(data)),
		Type:      fileType,
		Path:      path,
		IsPublic:  isPublic,
		CreatedAt: time.Now().UTC(),
	}
	key := record.ObjectKey()

	// 5. Сначала объект, затем метаданные: запись без объекта опаснее,
	// чем объект без записи. Content-Type — заявленный клиентом MIME,
	// при его отсутствии — производный от типа файла
	contentType := part.ContentType
	if contentType == "" {
		contentType = model.ContentTypeFor(fileType)
	}
	if err := s.store.Put(ctx, key, data, contentType, isPublic); err != nil {
		return nil, "", fmt.Errorf("ошибка записи объекта: %w", err)
	}

	// 6. Вставка метаданных; дубликат натурального ключа — no-op
	inserted, err := repo.Insert(ctx, record)
	if err != nil {
		return nil, key, fmt.Errorf("%w: %w", errInsertFailed, err)
	}

	if !inserted {
		uploadsTotal.WithLabelValues("duplicate").Inc()
		s.logger.Warn("Файл уже существует, вставка пропущена",
			slog.String("owner_id", ownerID.String()),
			slog.String("key", key),
		)
		return &UploadedFile{Record: record, Inserted: false}, key, nil
	}

	uploadsTotal.WithLabelValues("success").Inc()
	uploadBytesTotal.Add(float64(len(data)))

	s.logger.Info("Файл загружен",
		slog.String("file_id", record.ID.String()),
		slog.String("owner_id", ownerID.String()),
		slog.String("key", key),
		slog.Int64("size", record.Size),
		slog.String("type", record.Type),
		slog.Bool("is_public", isPublic),
	)
	s.logger.Debug("Контрольная сумма файла",
		slog.String("file_id", record.ID.String()),
		slog.String("sha256", checksum),
	)

	return &UploadedFile{Record: record, Inserted: true}, key, nil
}

// Delete удаляет файл: сначала запись метаданных, затем объект.
// Папки не имеют объекта — для них удаляется только запись.
func (s *UploadService) Delete(ctx context.Context, ownerID, fileID uuid.UUID) error {
	var record *model.FileRecord
	err := s.txm.WithFiles(ctx, func(repo repository.FileRepository) error {
		var getErr error
		record, getErr = repo.GetOwned(ctx, fileID, ownerID)
		if getErr != nil {
			return getErr
		}
		return repo.DeleteOwned(ctx, fileID, ownerID)
	})
	if err != nil {
		return err
	}

	// Инвалидация кэша метаданных
	if s.cache != nil {
		s.cache.Delete(fileID)
	}

	if record.IsFolder() {
		s.logger.Info("Папка удалена",
			slog.String("file_id", fileID.String()),
			slog.String("owner_id", ownerID.String()),
		)
		return nil
	}

	// Объект удаляем после записи: повторное удаление объекта идемпотентно,
	// а запись без объекта чистится lazy cleanup при скачивании
	if err := s.store.Delete(ctx, record.ObjectKey()); err != nil {
		orphanObjectsTotal.Inc()
		s.logger.Error("Удаление объекта не удалось, объект осиротел",
			slog.String("key", record.ObjectKey()),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("ошибка удаления объекта: %w", err)
	}

	s.logger.Info("Файл удалён",
		slog.String("file_id", fileID.String()),
		slog.String("owner_id", ownerID.String()),
		slog.String("key", record.ObjectKey()),
	)
	return nil
}
