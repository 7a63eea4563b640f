package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRow is the table layout for SQLCollection.
type documentRow struct {
	ID    string `gorm:"primaryKey;type:varchar(255)"`
	Count int    `gorm:"not null"`
}

// SQLCollection implements Collection on a relational table through GORM.
type SQLCollection struct {
	db    *gorm.DB
	table string
}

// NewSQLCollection creates the table for the collection if needed. Hyphens in the
// collection name become underscores in the table name.
func NewSQLCollection(db *gorm.DB, collection string) (*SQLCollection, error) {
	table := strings.ReplaceAll(collection, "-", "_")
	if err := db.Table(table).AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrate table %q: %w", table, err)
	}
	return &SQLCollection{db: db, table: table}, nil
}

func (c *SQLCollection) tx(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx).Table(c.table)
}

func (c *SQLCollection) Get(ctx context.Context, id string) (Document, bool, error) {
	var row documentRow
	err := c.tx(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("failed to get document %q: %w", id, err)
	}
	return Document{ID: row.ID, Count: row.Count}, true, nil
}

func (c *SQLCollection) Set(ctx context.Context, doc Document) error {
	row := documentRow{ID: doc.ID, Count: doc.Count}
	err := c.tx(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"count"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to set document %q: %w", doc.ID, err)
	}
	return nil
}

func (c *SQLCollection) Delete(ctx context.Context, id string) error {
	if err := c.tx(ctx).Where("id = ?", id).Delete(&documentRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete document %q: %w", id, err)
	}
	return nil
}

func (c *SQLCollection) List(ctx context.Context) ([]Document, error) {
	var rows []documentRow
	if err := c.tx(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list collection: %w", err)
	}
	docs := make([]Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, Document{ID: r.ID, Count: r.Count})
	}
	return docs, nil
}

// Close closes the underlying connection pool.
func (c *SQLCollection) Close() error {
	return closeDB(c.db)
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
