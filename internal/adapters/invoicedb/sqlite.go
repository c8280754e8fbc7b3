package invoicedb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/core"
)

// SQLiteRepository is a SQLite implementation of the InvoiceRepository interface
type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteRepository creates a new SQLite invoice repository
func NewSQLiteRepository(dbPath string, logger *zap.Logger) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS invoices (
			number TEXT PRIMARY KEY,
			vendor TEXT,
			amount REAL,
			currency TEXT,
			status TEXT,
			issued_at TIMESTAMP,
			due_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger,
	}, nil
}

// GetByNumber retrieves an invoice by its number
func (r *SQLiteRepository) GetByNumber(ctx context.Context, number string) (*core.Invoice, error) {
	var invoice core.Invoice
	var issuedAt, dueAt string

	err := r.db.QueryRowContext(ctx, `
		SELECT number, vendor, amount, currency, status, issued_at, due_at
		FROM invoices
		WHERE number = ?
	`, number).Scan(&invoice.Number, &invoice.Vendor, &invoice.Amount,
		&invoice.Currency, &invoice.Status, &issuedAt, &dueAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to query invoice: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, issuedAt); err == nil {
		invoice.IssuedAt = t
	}
	if t, err := time.Parse(time.RFC3339, dueAt); err == nil {
		invoice.DueAt = t
	}

	return &invoice, nil
}

// Put stores an invoice record
func (r *SQLiteRepository) Put(ctx context.Context, invoice *core.Invoice) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO invoices (number, vendor, amount, currency, status, issued_at, due_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, invoice.Number, invoice.Vendor, invoice.Amount, invoice.Currency,
		invoice.Status, invoice.IssuedAt.Format(time.RFC3339), invoice.DueAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	return nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close SQLite database: %w", err)
	}
	return nil
}
