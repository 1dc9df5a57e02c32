// list.go — сервис листинга файлов с динамическим фильтром.
// Координирует parsing фильтра с границы, repository и Prometheus-метрики.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/filevault/internal/filter"
	"github.com/bigkaa/filevault/internal/repository"
)

// Лимиты пагинации листинга.
const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Prometheus-метрики листинга.
var (
	listTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fv_list_total",
		Help: "Общее количество запросов листинга.",
	})
	listDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fv_list_duration_seconds",
		Help:    "Длительность запросов листинга.",
		Buckets: prometheus.DefBuckets,
	})
	listFilterErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fv_list_filter_errors_total",
		Help: "Количество некорректных JSON-фильтров (проигнорированы).",
	})
)

// ListQuery — параметры листинга с границы.
type ListQuery struct {
	// OwnerID — владелец
	OwnerID uuid.UUID
	// Path — путь листинга (пустая строка — корень)
	Path string
	// RawFilter — JSON-дерево условий фильтра (пустая строка — без фильтра)
	RawFilter string
	// SortBy — поле сортировки
	SortBy string
	// SortOrder — направление сортировки
	SortOrder string
	// Limit — лимит результатов (0 — значение по умолчанию)
	Limit int
	// Offset — смещение
	Offset int
}

// ListService — сервис листинга файлов.
type ListService struct {
	fileRepo repository.FileRepository
	logger   *slog.Logger
}

// NewListService создаёт сервис листинга.
func NewListService(fileRepo repository.FileRepository, logger *slog.Logger) *ListService {
	return &ListService{
		fileRepo: fileRepo,
		logger:   logger.With(slog.String("component", "list_service")),
	}
}

// List возвращает файлы владельца по пути как документы с camelCase-ключами.
// Некорректный JSON фильтра не фатален: логируется и игнорируется.
func (s *ListService) List(ctx context.Context, q ListQuery) ([]map[string]any, error) {
	start := time.Now()
	listTotal.Inc()

	// Парсим дерево фильтра; мусор с границы — это не фильтр, а его отсутствие
	var conds *filter.Conditions
	if q.RawFilter != "" {
		conds = filter.ParseConditions(q.RawFilter, s.logger)
		if conds == nil {
			listFilterErrorsTotal.Inc()
		}
	}

	// Нормализуем пагинацию
	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	docs, err := s.fileRepo.List(ctx, repository.ListParams{
		OwnerID:    q.OwnerID,
		Path:       q.Path,
		Conditions: conds,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, fmt.Errorf("листинг файлов: %w", err)
	}

	duration := time.Since(start)
	listDuration.Observe(duration.Seconds())

	s.logger.Debug("Листинг выполнен",
		slog.String("owner_id", q.OwnerID.String()),
		slog.String("path", q.Path),
		slog.Int("returned", len(docs)),
		slog.Duration("duration", duration),
	)

	return docs, nil
}
