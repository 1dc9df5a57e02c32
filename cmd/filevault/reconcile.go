// reconcile.go — подкоманда сверки метаданных с объектным хранилищем.
//
// Обходит бакет через ListObjectsV2 и создаёт записи метаданных для
// объектов, которых нет в БД; затем синтезирует записи-папки по путям.
// Повторный запуск идемпотентен — дубликаты не создаются.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/bigkaa/filevault/internal/config"
	"github.com/bigkaa/filevault/internal/database"
	"github.com/bigkaa/filevault/internal/objectstore"
	"github.com/bigkaa/filevault/internal/repository"
	"github.com/bigkaa/filevault/internal/service"
)

func runReconcile(args []string) {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	ownerArg := fs.String("owner", "", "UUID владельца импортируемых объектов (обязательный)")
	prefix := fs.String("prefix", "", "Импортировать только объекты с этим префиксом ключа")
	public := fs.Bool("public", false, "Помечать импортированные файлы публичными")
	_ = fs.Parse(args)

	if *ownerArg == "" {
		fmt.Fprintln(os.Stderr, "ошибка: флаг -owner обязателен")
		fs.Usage()
		os.Exit(1)
	}
	ownerID, err := uuid.Parse(*ownerArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ошибка: некорректный UUID владельца %q\n", *ownerArg)
		os.Exit(1)
	}

	// Конфигурация и логгер
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg)

	ctx := context.Background()

	// Миграции и подключение к БД
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка применения миграций", slog.String("error", err.Error()))
		os.Exit(1)
	}
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к БД", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// Объектное хранилище
	store := objectstore.NewS3Store(objectstore.S3Config{
		Endpoint:     cfg.S3Endpoint,
		Region:       cfg.S3Region,
		Bucket:       cfg.S3Bucket,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		UsePathStyle: cfg.S3UsePathStyle,
	})

	// Прогон сверки
	rs := service.NewReconcileService(repository.NewTxRunner(pool), store, logger)
	stats, err := rs.Run(ctx, ownerID, *prefix, *public)
	if err != nil {
		logger.Error("Сверка завершилась с ошибкой", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Просмотрено: %d, импортировано: %d, пропущено: %d, папок создано: %d\n",
		stats.Scanned, stats.Imported, stats.Skipped, stats.Folders)
}
