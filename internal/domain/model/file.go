// Пакет model — доменные модели filevault.
// FileRecord — маппинг таблицы files (метаданные файлов и папок).
package model

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Типы файлов вне таблицы расширений.
const (
	// TypeFolder — синтетическая запись директории (size = 0).
	TypeFolder = "folder"
	// TypeOther — тип не распознан ни по MIME, ни по расширению.
	TypeOther = "other"
)

// FileRecord — запись файла или папки в таблице files.
// Уникальность: (owner_id, path, title). Повторная вставка по этому
// ключу — no-op (ON CONFLICT DO NOTHING), не ошибка.
type FileRecord struct {
	// ID — UUID записи
	ID uuid.UUID
	// Title — отображаемое имя файла (имя из multipart part)
	Title string
	// OwnerID — UUID владельца (выдаётся auth-коллаборатором)
	OwnerID uuid.UUID
	// Size — размер файла в байтах (0 для папок)
	Size int64
	// Type — тип файла: расширение (png, pdf, ...), folder или other
	Type string
	// Path — путь с разделителем "/" без имени файла ("" — корень)
	Path string
	// IsPublic — публичный доступ к объекту (ACL public-read)
	IsPublic bool
	// CreatedAt — время создания записи
	CreatedAt time.Time
}

// IsFolder возвращает true для синтетических записей директорий.
func (f *FileRecord) IsFolder() bool {
	return f.Type == TypeFolder
}

// ObjectKey возвращает ключ объекта в object store: path/title.
// Пустой path — ключ равен title.
func (f *FileRecord) ObjectKey() string {
	return JoinKey(f.Path, f.Title)
}

// JoinKey собирает ключ объекта из пути и имени.
func JoinKey(path, title string) string {
	if path == "" {
		return title
	}
	return path + "/" + title
}

// SplitKey разбивает ключ объекта на (path, title) по последнему "/".
// Ключ без разделителя — путь пустой.
func SplitKey(key string) (path, title string) {
	idx := strings.LastIndex(key, "/")
	if idx < 0 {
		return "", key
	}
	return key[:idx], key[idx+1:]
}

// mimeTypes — соответствие MIME-типа типу файла.
var mimeTypes = map[string]string{
	"image/png":           "png",
	"image/jpg":           "jpg",
	"image/jpeg":          "jpeg",
	"image/webp":          "webp",
	"image/gif":           "gif",
	"image/svg+xml":       "svg",
	"application/pdf":     "pdf",
	"application/msword":  "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"text/plain":               "txt",
	"application/vnd.ms-excel": "xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "xlsx",
	"audio/mpeg":          "mp3",
	"audio/wav":           "wav",
	"audio/ogg":           "ogg",
	"video/mp4":           "mp4",
	"video/quicktime":     "mov",
	"video/x-msvideo":     "avi",
	"video/webm":          "webm",
	"application/zip":     "zip",
	"application/vnd.rar": "rar",
	"application/json":    "json",
	"text/csv":            "csv",
}

// contentTypes — обратное соответствие: тип файла → Content-Type.
var contentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"txt":  "text/plain",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"webm": "video/webm",
	"zip":  "application/zip",
	"rar":  "application/vnd.rar",
	"json": "application/json",
	"csv":  "text/csv",
}

// TypeFromMIME определяет тип файла по MIME-типу.
// Параметры после ";" (charset и т.д.) отбрасываются.
// Нераспознанный или пустой MIME — пустая строка (вызывающий код
// пробует затем расширение имени файла).
func TypeFromMIME(mime string) string {
	if idx := strings.Index(mime, ";"); idx != -1 {
		mime = mime[:idx]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mime == "" || mime == "application/octet-stream" {
		return ""
	}
	return mimeTypes[mime]
}

// TypeFromFilename определяет тип файла по расширению имени.
// Имя без расширения или с неизвестным расширением — пустая строка.
func TypeFromFilename(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return ""
	}
	if _, ok := contentTypes[ext]; ok {
		return ext
	}
	return ""
}

// InferType определяет тип файла: сначала MIME, затем расширение,
// иначе TypeOther.
func InferType(mime, filename string) string {
	if t := TypeFromMIME(mime); t != "" {
		return t
	}
	if t := TypeFromFilename(filename); t != "" {
		return t
	}
	return TypeOther
}

// ContentTypeFor возвращает Content-Type для типа файла.
// Неизвестный тип — application/octet-stream.
func ContentTypeFor(fileType string) string {
	if ct, ok := contentTypes[fileType]; ok {
		return ct
	}
	return "application/octet-stream"
}
