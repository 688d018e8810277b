// Package corpus persists the document corpus and resolution audit trail,
// and hands out immutable snapshots for deterministic resolution passes.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agenthands/caselink/internal/model"
)

// Document is a corpus document row. Fingerprint is the sha256 of the source
// content and deduplicates re-registration.
type Document struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Fingerprint string `gorm:"uniqueIndex;not null"`
	Reporter    string
	Volume      int
	Page        int
	Year        int
	Court       string
	Docket      string
	Processed   bool
	CreatedAt   time.Time
}

// Mention is a stored citation mention awaiting (or re-awaiting) resolution.
// Keeping mentions replayable lets a failed pass be re-run from scratch.
type Mention struct {
	ID         uint   `gorm:"primaryKey"`
	DocumentID string `gorm:"index;not null"`
	RawText    string `gorm:"not null"`
	Reporter   string
	Volume     int
	Page       int
	Year       int
	CaseName   string
	Court      string
	PageNumber int
	SpanStart  int
	SpanEnd    int
	CreatedAt  time.Time
}

// CitationRecord is the persisted audit form of a Resolution. Unresolved
// outcomes are stored too: downstream always sees an auditable record.
type CitationRecord struct {
	ID             string `gorm:"primaryKey"`
	FromDocumentID string `gorm:"index;not null"`
	ToDocumentID   string `gorm:"index"`
	RawText        string
	NormalizedKey  string `gorm:"index;not null"`
	Reporter       string
	Volume         int
	Page           int
	Year           int
	PageNumber     int
	SpanStart      int
	SpanEnd        int
	Confidence     float64 `gorm:"not null"`
	ResolutionPath string  `gorm:"not null"`
	Notes          string  // JSON array
	CreatedAt      time.Time
}

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus store at '%s': %w", path, err)
	}

	if err := db.AutoMigrate(&Document{}, &Mention{}, &CitationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate corpus schema: %w", err)
	}

	return &Store{db: db}, nil
}

// RegisterDocument inserts a document, deduplicating by fingerprint. When a
// document with the same fingerprint exists, the existing row is returned
// and no new row is created.
func (s *Store) RegisterDocument(doc Document) (Document, error) {
	if doc.Fingerprint != "" {
		var existing Document
		err := s.db.Where("fingerprint = ?", doc.Fingerprint).First(&existing).Error
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, err
		}
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.CreatedAt = time.Now().UTC()

	if err := s.db.Create(&doc).Error; err != nil {
		return Document{}, fmt.Errorf("failed to register document: %w", err)
	}
	return doc, nil
}

func (s *Store) Document(id string) (Document, error) {
	var doc Document
	if err := s.db.First(&doc, "id = ?", id).Error; err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *Store) Documents(offset, limit int) ([]Document, int64, error) {
	var docs []Document
	var total int64

	if err := s.db.Model(&Document{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := s.db.Order("created_at, id").Offset(offset).Limit(limit).Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Unprocessed returns documents that have stored mentions but no completed
// resolution pass yet.
func (s *Store) Unprocessed() ([]Document, error) {
	var docs []Document
	err := s.db.
		Where("processed = ? AND id IN (?)", false,
			s.db.Model(&Mention{}).Distinct("document_id")).
		Order("created_at, id").
		Find(&docs).Error
	return docs, err
}

// SaveMentions replaces the stored mentions for a document with the given
// set, keeping the mention stream replayable on re-resolution.
func (s *Store) SaveMentions(docID string, mentions []model.CitationMention) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", docID).Delete(&Mention{}).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, m := range mentions {
			row := Mention{
				DocumentID: docID,
				RawText:    m.RawText,
				Reporter:   m.Reporter,
				Volume:     m.Volume,
				Page:       m.Page,
				Year:       m.Year,
				CaseName:   m.CaseName,
				Court:      m.Court,
				PageNumber: m.PageNumber,
				SpanStart:  m.SpanStart,
				SpanEnd:    m.SpanEnd,
				CreatedAt:  now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return tx.Model(&Document{}).Where("id = ?", docID).Update("processed", false).Error
	})
}

func (s *Store) MentionsFor(docID string) ([]model.CitationMention, error) {
	var rows []Mention
	if err := s.db.Where("document_id = ?", docID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	mentions := make([]model.CitationMention, 0, len(rows))
	for _, r := range rows {
		mentions = append(mentions, model.CitationMention{
			RawText:          r.RawText,
			Reporter:         r.Reporter,
			Volume:           r.Volume,
			Page:             r.Page,
			Year:             r.Year,
			CaseName:         r.CaseName,
			Court:            r.Court,
			SourceDocumentID: r.DocumentID,
			PageNumber:       r.PageNumber,
			SpanStart:        r.SpanStart,
			SpanEnd:          r.SpanEnd,
		})
	}
	return mentions, nil
}

// ReplaceResolutions atomically swaps a document's resolution records for
// the outcome of a completed pass and marks the document processed. A pass
// either lands wholesale or not at all.
func (s *Store) ReplaceResolutions(docID string, resolutions []model.Resolution) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("from_document_id = ?", docID).Delete(&CitationRecord{}).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, res := range resolutions {
			notes, err := json.Marshal(res.Notes)
			if err != nil {
				return err
			}
			rec := CitationRecord{
				ID:             uuid.New().String(),
				FromDocumentID: docID,
				ToDocumentID:   res.ToDocumentID,
				RawText:        res.Mention.RawText,
				NormalizedKey:  res.NormalizedKey,
				Reporter:       res.Normalized.Reporter,
				Volume:         res.Normalized.Volume,
				Page:           res.Normalized.Page,
				Year:           res.Normalized.Year,
				PageNumber:     res.Mention.PageNumber,
				SpanStart:      res.Mention.SpanStart,
				SpanEnd:        res.Mention.SpanEnd,
				Confidence:     res.Confidence,
				ResolutionPath: string(res.Path),
				Notes:          string(notes),
				CreatedAt:      now,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return tx.Model(&Document{}).Where("id = ?", docID).Update("processed", true).Error
	})
}

func (s *Store) CitationsFrom(docID string) ([]CitationRecord, error) {
	var recs []CitationRecord
	err := s.db.Where("from_document_id = ?", docID).Order("page_number, span_start, id").Find(&recs).Error
	return recs, err
}

// ResolvedEdges returns citation records with a target at or above the given
// confidence, for graph export.
func (s *Store) ResolvedEdges(minConfidence float64) ([]CitationRecord, error) {
	var recs []CitationRecord
	err := s.db.
		Where("to_document_id <> '' AND confidence >= ?", minConfidence).
		Order("from_document_id, page_number, span_start, id").
		Find(&recs).Error
	return recs, err
}
