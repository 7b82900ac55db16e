package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

var ErrOptimisticLock = errors.New("optimistic lock conflict")

//go:embed schema.sql
var schema string

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// Migrate creates missing tables. Statements are idempotent.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, name, price FROM items ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Price); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (m *MySQLAdapter) CreateItem(ctx context.Context, item domain.NewItem) (domain.Item, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Item{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `INSERT INTO items (name, price) VALUES (?, ?)`, item.Name, item.Price)
	if err != nil {
		return domain.Item{}, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.Item{}, fmt.Errorf("item id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO inventory (item_id, stock, version) VALUES (?, 0, 0)`, id); err != nil {
		return domain.Item{}, fmt.Errorf("insert inventory: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Item{}, fmt.Errorf("commit: %w", err)
	}
	return domain.Item{ID: id, Name: item.Name, Price: item.Price}, nil
}

// CreateSale stores the sale with its lines and decrements stock for every
// line. The whole sale is rolled back if any line lacks stock.
func (m *MySQLAdapter) CreateSale(ctx context.Context, sale domain.Sale) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (request_id, seller, status, total, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sale.RequestID.String(), sale.Seller, domain.SaleStatusConfirmed, sale.Total(), sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for _, l := range sale.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_lines (request_id, item_id, amount, price)
			VALUES (?, ?, ?, ?)`,
			sale.RequestID.String(), l.ItemID, l.Amount, l.Price,
		)
		if err != nil {
			return fmt.Errorf("insert sale line: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE inventory
			SET stock = stock - ?, version = version + 1, updated_at = NOW()
			WHERE item_id = ? AND stock >= ?`,
			l.Amount, l.ItemID, l.Amount,
		)
		if err != nil {
			return fmt.Errorf("update inventory: %w", err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrOptimisticLock
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) ApplyMovement(ctx context.Context, mv domain.StockMovement, actor string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO stock_movements (item_id, qty, note, actor)
		VALUES (?, ?, ?, ?)`,
		mv.ItemID, mv.Qty, mv.Note, actor,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE inventory
		SET stock = stock + ?, version = version + 1, updated_at = NOW()
		WHERE item_id = ? AND stock + ? >= 0`,
		mv.Qty, mv.ItemID, mv.Qty,
	)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrOptimisticLock
	}

	return tx.Commit()
}

func (m *MySQLAdapter) GetInventory(ctx context.Context, itemID int64) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := m.db.QueryRowContext(ctx, `
		SELECT item_id, stock, version, created_at, updated_at
		FROM inventory WHERE item_id = ?`, itemID,
	).Scan(&inv.ItemID, &inv.Quantity, &inv.Version, &inv.CreatedAt, &inv.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}

	return &inv, nil
}

func (m *MySQLAdapter) ListInventory(ctx context.Context) ([]domain.Inventory, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT item_id, stock, version, created_at, updated_at FROM inventory`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	var out []domain.Inventory
	for rows.Next() {
		var inv domain.Inventory
		if err := rows.Scan(&inv.ItemID, &inv.Quantity, &inv.Version, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
