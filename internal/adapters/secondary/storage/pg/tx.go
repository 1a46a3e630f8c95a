package pg

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
)

// Tx обёртка над sqlx.Tx для работы с транзакциями
// ctx сохраняется при создании транзакции для логирования/метрик, в методах используется переданный контекст
type Tx struct {
	tx  *sqlx.Tx
	ctx context.Context // сохранённый контекст создания транзакции (для логирования/метрик)
}

// имена savepoint не параметризуются плейсхолдерами, поэтому валидируем явно
var savepointNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Get запрос в транзакции и сканирует результат в структуру
func (t *Tx) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return t.tx.GetContext(ctx, dest, query, args...)
}

// Select запрос в транзакции и сканирует результаты в слайс
func (t *Tx) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return t.tx.SelectContext(ctx, dest, query, args...)
}

// Exec запрос в транзакции без возврата данных
func (t *Tx) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

// ExecWithResult запрос в транзакции и возвращает количество затронутых строк
func (t *Tx) ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// NamedExec именованный запрос в транзакции
func (t *Tx) NamedExec(ctx context.Context, query string, arg interface{}) error {
	_, err := t.tx.NamedExecContext(ctx, query, arg)
	return err
}

// QueryRow запрос в транзакции и возвращает строку для сканирования
func (t *Tx) QueryRow(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return t.tx.QueryRowxContext(ctx, query, args...)
}

// Savepoint создаёт вложенную точку сохранения
func (t *Tx) Savepoint(ctx context.Context, name string) error {
	if !savepointNameRe.MatchString(name) {
		return fmt.Errorf("invalid savepoint name: %s", name)
	}
	_, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name)
	return err
}

// ReleaseSavepoint освобождает точку сохранения после успешного блока
func (t *Tx) ReleaseSavepoint(ctx context.Context, name string) error {
	if !savepointNameRe.MatchString(name) {
		return fmt.Errorf("invalid savepoint name: %s", name)
	}
	_, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
	return err
}

// RollbackToSavepoint откатывает вложенный блок, не трогая внешнюю транзакцию
func (t *Tx) RollbackToSavepoint(ctx context.Context, name string) error {
	if !savepointNameRe.MatchString(name) {
		return fmt.Errorf("invalid savepoint name: %s", name)
	}
	_, err := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name)
	return err
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
