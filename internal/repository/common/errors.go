package common

import "errors"

// Общие маркеры ошибок для всех репозиториев. Конкретные сентинелы
// оборачивают их через %w, чтобы вызывающий код мог матчить класс.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
)
