package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&PolicyDocument{}, &PolicyClause{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	if err := applyIndexes(db); err != nil {
		return nil, fmt.Errorf("apply indexes: %w", err)
	}
	return &Database{gorm: db}, nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ReplaceDocument stores doc and swaps its clause list for clauses in one transaction.
func (d *Database) ReplaceDocument(doc *PolicyDocument, clauses []string) error {
	if doc == nil {
		return errors.New("document is nil")
	}
	doc.DocID = strings.TrimSpace(doc.DocID)
	if doc.DocID == "" {
		return errors.New("document id is required")
	}
	doc.ClauseCount = len(clauses)

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"source", "clause_count", "updated_at"}),
		}).Create(doc).Error; err != nil {
			return err
		}
		if err := tx.Where("doc_id = ?", doc.DocID).Delete(&PolicyClause{}).Error; err != nil {
			return err
		}
		if len(clauses) == 0 {
			return nil
		}
		rows := make([]PolicyClause, 0, len(clauses))
		for i, text := range clauses {
			rows = append(rows, PolicyClause{DocID: doc.DocID, Position: i, Text: text})
		}
		// Batch insert to stay under the SQLite variable limit (999)
		const batchSize = 250
		return tx.CreateInBatches(rows, batchSize).Error
	})
}

// GetDocument retrieves a document by id. A missing document yields gorm.ErrRecordNotFound.
func (d *Database) GetDocument(docID string) (*PolicyDocument, error) {
	var doc PolicyDocument
	if err := d.gorm.Where("doc_id = ?", docID).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListClauses returns the clause texts of a document in document order.
func (d *Database) ListClauses(docID string) ([]string, error) {
	var texts []string
	if err := d.gorm.Model(&PolicyClause{}).
		Where("doc_id = ?", docID).
		Order("position ASC").
		Pluck("text", &texts).Error; err != nil {
		return nil, err
	}
	return texts, nil
}

// ListDocuments returns every stored document, most recently updated first.
func (d *Database) ListDocuments() ([]PolicyDocument, error) {
	var docs []PolicyDocument
	if err := d.gorm.Model(&PolicyDocument{}).Order("updated_at DESC, doc_id ASC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocument removes a document and its clauses.
func (d *Database) DeleteDocument(docID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doc_id = ?", docID).Delete(&PolicyClause{}).Error; err != nil {
			return err
		}
		return tx.Where("doc_id = ?", docID).Delete(&PolicyDocument{}).Error
	})
}

func applyIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_policy_clauses_doc_position ON policy_clauses(doc_id, position)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
