// main.go — точка входа FileVault.
// Без аргументов запускает демон служебных endpoints (health, metrics).
// Подкоманда reconcile выполняет сверку метаданных с объектным хранилищем.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/bigkaa/filevault/internal/api/handlers"
	"github.com/bigkaa/filevault/internal/api/middleware"
	"github.com/bigkaa/filevault/internal/config"
	"github.com/bigkaa/filevault/internal/database"
	"github.com/bigkaa/filevault/internal/objectstore"
	"github.com/bigkaa/filevault/internal/server"
)

func main() {
	// Диспетчеризация подкоманд
	if len(os.Args) > 1 && os.Args[1] == "reconcile" {
		runReconcile(os.Args[2:])
		return
	}

	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// 2. Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("FileVault запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Миграции БД
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка применения миграций", slog.String("error", err.Error()))
		log.Fatalf("Миграции не применены: %v", err)
	}

	// 4. Подключение к PostgreSQL
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к БД", slog.String("error", err.Error()))
		log.Fatalf("БД недоступна: %v", err)
	}
	defer pool.Close()

	// 5. Health handler с проверками PostgreSQL и объектного хранилища
	store := objectstore.NewS3Store(objectstore.S3Config{
		Endpoint:     cfg.S3Endpoint,
		Region:       cfg.S3Region,
		Bucket:       cfg.S3Bucket,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	healthHandler := handlers.NewHealthHandler(
		database.NewReadinessChecker(pool),
		objectstore.NewReadinessChecker(store),
	)

	// 6. HTTP-сервер служебных endpoints
	srv := server.New(cfg, logger, healthHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)

	// 7. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		log.Fatalf("Сервер завершился с ошибкой: %v", err)
	}

	logger.Info("FileVault остановлен")
}
