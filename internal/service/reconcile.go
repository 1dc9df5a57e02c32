// reconcile.go — сервис сверки метаданных с объектным хранилищем.
//
// Импорт: постраничный обход бакета, для каждого объекта создаётся
// запись метаданных (дубликаты — no-op за счёт ON CONFLICT DO NOTHING).
// Синтез папок: по всем различным путям владельца создаются записи-папки
// для каждого компонента пути.
//
// Обе операции идемпотентны: повторный запуск ничего не дублирует.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/filevault/internal/domain/model"
	"github.com/bigkaa/filevault/internal/objectstore"
	"github.com/bigkaa/filevault/internal/repository"
)

// Prometheus-метрики сверки.
var (
	// reconcileRunsTotal — количество запусков сверки.
	reconcileRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fv_reconcile_runs_total",
		Help: "Общее количество запусков сверки с объектным хранилищем",
	})

	// reconcileImportedTotal — количество записей, созданных сверкой, по типу.
	reconcileImportedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fv_reconcile_imported_total",
		Help: "Общее количество записей, созданных сверкой",
	}, []string{"kind"})

	// reconcileDurationSeconds — длительность выполнения сверки.
	reconcileDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fv_reconcile_duration_seconds",
		Help:    "Длительность выполнения сверки в секундах",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	})
)

// ImportStats — итоги прогона сверки.
type ImportStats struct {
	// Scanned — просмотрено объектов в хранилище
	Scanned int
	// Imported — создано записей файлов
	Imported int
	// Skipped — пропущено (дубликаты, ключи-папки, пустые имена)
	Skipped int
	// Folders — создано записей-папок
	Folders int
}

// ReconcileService — сервис сверки метаданных с объектным хранилищем.
type ReconcileService struct {
	txm    repository.TxManager
	store  objectstore.Store
	logger *slog.Logger
}

// NewReconcileService создаёт сервис сверки.
func NewReconcileService(txm repository.TxManager, store objectstore.Store, logger *slog.Logger) *ReconcileService {
	return &ReconcileService{
		txm:    txm,
		store:  store,
		logger: logger.With(slog.String("component", "reconcile")),
	}
}

// Run выполняет полный прогон сверки: импорт объектов, затем синтез папок.
func (rs *ReconcileService) Run(ctx context.Context, ownerID uuid.UUID, prefix string, public bool) (*ImportStats, error) {
	start := time.Now()
	reconcileRunsTotal.Inc()

	stats, err := rs.ImportFromStore(ctx, ownerID, prefix, public)
	if err != nil {
		return nil, err
	}

	folders, err := rs.SynthesizeFolders(ctx, ownerID, public)
	if err != nil {
		return nil, err
	}
	stats.Folders = folders

	duration := time.Since(start)
	reconcileDurationSeconds.Observe(duration.Seconds())

	rs.logger.Info("Сверка завершена",
		slog.Int("scanned", stats.Scanned),
		slog.Int("imported", stats.Imported),
		slog.Int("skipped", stats.Skipped),
		slog.Int("folders", stats.Folders),
		slog.Duration("duration", duration),
	)
	return stats, nil
}

// ImportFromStore постранично обходит бакет и создаёт записи метаданных
// для объектов, которых нет в БД. Повторный запуск идемпотентен.
func (rs *ReconcileService) ImportFromStore(ctx context.Context, ownerID uuid.UUID, prefix string, public bool) (*ImportStats, error) {
	stats := &ImportStats{}
	token := ""

	for {
		page, err := rs.store.List(ctx, prefix, token)
		if err != nil {
			return nil, fmt.Errorf("листинг бакета: %w", err)
		}

		for _, obj := range page.Objects {
			stats.Scanned++

			// Ключи-маркеры папок (заканчиваются на "/") не импортируются:
			// папки синтезируются из путей
			if strings.HasSuffix(obj.Key, "/") {
				stats.Skipped++
				continue
			}

			path, title := model.SplitKey(obj.Key)
			if title == "" {
				stats.Skipped++
				continue
			}

			imported, err := rs.importObject(ctx, ownerID, path, title, obj, public)
			if err != nil {
				return nil, err
			}
			if imported {
				stats.Imported++
				reconcileImportedTotal.WithLabelValues("file").Inc()
			} else {
				stats.Skipped++
			}
		}

		if !page.IsTruncated || page.NextToken == "" {
			break
		}
		token = page.NextToken
	}

	return stats, nil
}

// importObject создаёт запись метаданных для одного объекта.
// Возвращает false, если запись уже существовала.
func (rs *ReconcileService) importObject(
	ctx context.Context,
	ownerID uuid.UUID,
	path, title string,
	obj objectstore.ObjectInfo,
	public bool,
) (bool, error) {
	// Content-Type объекта уточняет тип файла; отсутствие объекта
	// между List и Head не фатально
	contentType, _, err := rs.store.Head(ctx, obj.Key)
	if err != nil && !errors.Is(err, objectstore.ErrNotFound) {
		return false, fmt.Errorf("HEAD объекта %q: %w", obj.Key, err)
	}

	record := &model.FileRecord{
		ID:        uuid.New(),
		Title:     title,
		OwnerID:   ownerID,
		Size:      obj.Size,
		Type:      model.InferType(contentType, title),
		Path:      path,
		IsPublic:  public,
		CreatedAt: time.Now().UTC(),
	}

	var inserted bool
	err = rs.txm.WithFiles(ctx, func(repo repository.FileRepository) error {
		var insErr error
		inserted, insErr = repo.Insert(ctx, record)
		return insErr
	})
	if err != nil {
		return false, fmt.Errorf("вставка записи для %q: %w", obj.Key, err)
	}

	if inserted {
		rs.logger.Debug("Объект импортирован",
			slog.String("key", obj.Key),
			slog.String("file_id", record.ID.String()),
			slog.Int64("size", obj.Size),
		)
	}
	return inserted, nil
}

// SynthesizeFolders создаёт записи-папки для каждого компонента
// каждого различного пути владельца. Возвращает количество созданных записей.
//
// Для пути "a/b/c" создаются папки: ("", "a"), ("a", "b"), ("a/b", "c").
// Признак публичности наследуется от прогона импорта: папки публичного
// импорта должны находиться фильтром по is_public наравне с файлами.
func (rs *ReconcileService) SynthesizeFolders(ctx context.Context, ownerID uuid.UUID, public bool) (int, error) {
	var paths []string
	err := rs.txm.WithFiles(ctx, func(repo repository.FileRepository) error {
		var listErr error
		paths, listErr = repo.DistinctPaths(ctx, ownerID)
		return listErr
	})
	if err != nil {
		return 0, fmt.Errorf("выборка путей владельца: %w", err)
	}

	created := 0
	seen := map[string]bool{}

	for _, p := range paths {
		parent := ""
		for _, component := range strings.Split(p, "/") {
			if component == "" {
				continue
			}
			full := model.JoinKey(parent, component)
			if seen[full] {
				parent = full
				continue
			}
			seen[full] = true

			folder := &model.FileRecord{
				ID:        uuid.New(),
				Title:     component,
				OwnerID:   ownerID,
				Size:      0,
				Type:      model.TypeFolder,
				Path:      parent,
				IsPublic:  public,
				CreatedAt: time.Now().UTC(),
			}

			var inserted bool
			err := rs.txm.WithFiles(ctx, func(repo repository.FileRepository) error {
				var insErr error
				inserted, insErr = repo.Insert(ctx, folder)
				return insErr
			})
			if err != nil {
				return created, fmt.Errorf("вставка папки %q: %w", full, err)
			}
			if inserted {
				created++
				reconcileImportedTotal.WithLabelValues("folder").Inc()
				rs.logger.Debug("Папка создана",
					slog.String("path", parent),
					slog.String("title", component),
				)
			}
			parent = full
		}
	}

	return created, nil
}
