package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/filevault/internal/domain/model"
	"github.com/bigkaa/filevault/internal/filter"
	"github.com/bigkaa/filevault/internal/serialize"
)

// fileColumns — список столбцов таблицы files для SELECT-запросов.
// DRY: одно место для всех SELECT'ов.
const fileColumns = `id, title, owner_id, size, type, path, is_public, created_at`

// ListParams — параметры листинга файлов.
type ListParams struct {
	// OwnerID — владелец (обязательный scope каждого запроса)
	OwnerID uuid.UUID
	// Path — путь листинга (пустая строка — корень)
	Path string
	// Conditions — дерево фильтра с границы (nil — без фильтра)
	Conditions *filter.Conditions
	// SortBy — поле сортировки: created_at, title, size, type
	SortBy string
	// SortOrder — направление: asc, desc
	SortOrder string
	// Limit — количество результатов
	Limit int
	// Offset — смещение
	Offset int
}

// FileRepository — доступ к таблице files.
type FileRepository interface {
	// Insert вставляет запись с ON CONFLICT (owner_id, path, title) DO NOTHING.
	// Возвращает true, если строка реально вставлена (дубликат — false, nil).
	Insert(ctx context.Context, f *model.FileRecord) (bool, error)
	// GetOwned возвращает запись по (id, owner_id) или ErrNotFound.
	GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*model.FileRecord, error)
	// DeleteOwned удаляет запись по (id, owner_id) или ErrNotFound.
	DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error
	// List выполняет листинг с компиляцией фильтра и возвращает
	// сериализованные документы с camelCase-ключами.
	List(ctx context.Context, params ListParams) ([]map[string]any, error)
	// DistinctPaths возвращает все различные непустые path владельца.
	DistinctPaths(ctx context.Context, ownerID uuid.UUID) ([]string, error)
}

// fileRepo — реализация FileRepository через pgx.
type fileRepo struct {
	db DBTX
}

// NewFileRepository создаёт репозиторий файлов.
func NewFileRepository(db DBTX) FileRepository {
	return &fileRepo{db: db}
}

// Insert вставляет запись метаданных. Дубликат по натуральному ключу
// (owner_id, path, title) — молчаливый no-op, не ошибка.
func (r *fileRepo) Insert(ctx context.Context, f *model.FileRecord) (bool, error) {
	query := `
		INSERT INTO files (id, title, owner_id, size, type, path, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_id, path, title) DO NOTHING`

	tag, err := r.db.Exec(ctx, query,
		f.ID, f.Title, f.OwnerID, f.Size, f.Type, f.Path, f.IsPublic,
	)
	if err != nil {
		return false, fmt.Errorf("ошибка вставки записи файла: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetOwned возвращает запись по id в scope владельца.
func (r *fileRepo) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*model.FileRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM files WHERE id = $1 AND owner_id = $2`, fileColumns)

	f := &model.FileRecord{}
	err := r.db.QueryRow(ctx, query, id, ownerID).Scan(
		&f.ID, &f.Title, &f.OwnerID, &f.Size, &f.Type, &f.Path, &f.IsPublic, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения файла: %w", err)
	}
	return f, nil
}

// DeleteOwned удаляет запись по id в scope владельца.
func (r *fileRepo) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("ошибка удаления записи файла: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List выполняет листинг файлов владельца по пути с динамическим фильтром.
func (r *fileRepo) List(ctx context.Context, params ListParams) ([]map[string]any, error) {
	query, args, err := buildListQuery(params)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка листинга файлов: %w", err)
	}
	defer rows.Close()

	docs, err := serialize.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации результатов: %w", err)
	}
	return docs, nil
}

// DistinctPaths возвращает различные непустые пути файлов владельца.
func (r *fileRepo) DistinctPaths(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT path FROM files WHERE owner_id = $1 AND path != ''`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки путей: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("ошибка сканирования пути: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации путей: %w", err)
	}
	return paths, nil
}

// buildListQuery собирает SQL листинга и аргументы запроса.
//
// Позиции $1/$2 заняты owner_id/path, WHERE-клауза фильтра компилируется
// с плейсхолдерами $3+, LIMIT/OFFSET — после параметров фильтра.
// Литералы фильтра приводятся к нативным типам на этой границе
// (filter.Coerce); строковый литерал "null" связывается как SQL NULL,
// чтобы нумерация плейсхолдеров совпадала с откомпилированной клаузой.
func buildListQuery(params ListParams) (string, []any, error) {
	builder := filter.NewWhereBuilder("files", 2)
	where, rawParams := builder.BuildWhereClause(params.Conditions)

	args := []any{params.OwnerID, params.Path}
	for _, raw := range rawParams {
		v, err := filter.Coerce(raw)
		if err != nil {
			if errors.Is(err, filter.ErrNullLiteral) {
				args = append(args, nil)
				continue
			}
			return "", nil, fmt.Errorf("ошибка приведения литерала фильтра: %w", err)
		}
		args = append(args, v)
	}

	argNum := len(args) + 1
	query := fmt.Sprintf(
		`SELECT %s FROM files WHERE files.owner_id = $1 AND files.path = $2 AND %s %s LIMIT $%d OFFSET $%d`,
		fileColumns, where, buildOrderBy(params.SortBy, params.SortOrder), argNum, argNum+1,
	)
	args = append(args, params.Limit, params.Offset)

	return query, args, nil
}

// Поле сортировки по умолчанию.
const defaultSortColumn = "created_at"

// buildOrderBy строит ORDER BY с безопасным whitelist полей.
// Предотвращает SQL-инъекции — только разрешённые значения.
func buildOrderBy(sortBy, sortOrder string) string {
	// Whitelist допустимых полей сортировки
	column := defaultSortColumn
	switch sortBy {
	case "title":
		column = "title"
	case "size":
		column = "size"
	case "type":
		column = "type"
	case "path":
		column = "path"
	case defaultSortColumn:
		column = defaultSortColumn
	}

	// Whitelist направлений сортировки; по умолчанию — новые сверху
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}

	return fmt.Sprintf("ORDER BY files.%s %s", column, direction)
}
