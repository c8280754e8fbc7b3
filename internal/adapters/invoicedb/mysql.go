package invoicedb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/core"
)

// MySQLRepository is a MySQL implementation of the InvoiceRepository interface
type MySQLRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLRepository creates a new MySQL invoice repository
func NewMySQLRepository(dsn string, logger *zap.Logger) (*MySQLRepository, error) {
	db, err := sql.Open("mysql", dsn+"?parseTime=true")
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS invoices (
			number VARCHAR(64) PRIMARY KEY,
			vendor VARCHAR(255),
			amount DOUBLE,
			currency VARCHAR(8),
			status VARCHAR(32),
			issued_at DATETIME,
			due_at DATETIME
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLRepository{
		db:     db,
		logger: logger,
	}, nil
}

// GetByNumber retrieves an invoice by its number
func (r *MySQLRepository) GetByNumber(ctx context.Context, number string) (*core.Invoice, error) {
	var invoice core.Invoice

	err := r.db.QueryRowContext(ctx, `
		SELECT number, vendor, amount, currency, status, issued_at, due_at
		FROM invoices
		WHERE number = ?
	`, number).Scan(&invoice.Number, &invoice.Vendor, &invoice.Amount,
		&invoice.Currency, &invoice.Status, &invoice.IssuedAt, &invoice.DueAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to query invoice: %w", err)
	}

	return &invoice, nil
}

// Put stores an invoice record
func (r *MySQLRepository) Put(ctx context.Context, invoice *core.Invoice) error {
	_, err := r.db.ExecContext(ctx, `
		REPLACE INTO invoices (number, vendor, amount, currency, status, issued_at, due_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, invoice.Number, invoice.Vendor, invoice.Amount, invoice.Currency,
		invoice.Status, invoice.IssuedAt, invoice.DueAt)

	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	return nil
}

// Close closes the database connection
func (r *MySQLRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close MySQL database: %w", err)
	}
	return nil
}
