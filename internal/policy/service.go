package policy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"claim-eval/internal/store"
)

const (
	// SampleDocID names the bundled sample policy.
	SampleDocID = "policy_sample"
	// UploadedDocID names the most recently uploaded policy.
	UploadedDocID = "policy_uploaded"
)

// ErrNoDocument is returned when no policy document has been stored yet.
var ErrNoDocument = errors.New("no policy document loaded")

// resolution order for ActiveClauses
var activeOrder = []string{UploadedDocID, SampleDocID}

// Service manages policy document persistence and clause lookup.
type Service struct {
	db *store.Database
	// writeMu orders database writes with their cache updates.
	writeMu sync.Mutex
	cache   map[string][]string
	// generation is bumped on every write; a read only caches what it loaded if the
	// generation it started under is still current.
	generation map[string]uint64
	cacheMu    sync.RWMutex
}

func NewService(db *store.Database) *Service {
	return &Service{
		db:         db,
		cache:      make(map[string][]string),
		generation: make(map[string]uint64),
	}
}

// SplitClauses turns policy text into clauses: one per line, trimmed, blank lines dropped.
func SplitClauses(text string) []string {
	clauses := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		clauses = append(clauses, line)
	}
	return clauses
}

// LoadFromFile reads the policy text at path and stores it under docID.
func (s *Service) LoadFromFile(docID, path string) (int, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, fmt.Errorf("policy path is empty")
	}
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open policy file: %w", err)
	}
	defer file.Close()
	return s.Load(docID, filepath.Base(path), file)
}

// Load reads the whole reader as policy text and stores it under docID.
func (s *Service) Load(docID, source string, r io.Reader) (int, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return 0, fmt.Errorf("read policy text: %w", err)
	}
	return s.Store(docID, source, string(data))
}

// Store replaces the document docID with the clauses of text.
func (s *Service) Store(docID, source, text string) (int, error) {
	clauses := SplitClauses(text)
	doc := &store.PolicyDocument{DocID: docID, Source: source}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.db.ReplaceDocument(doc, clauses); err != nil {
		return 0, fmt.Errorf("store policy %s: %w", docID, err)
	}

	s.cacheMu.Lock()
	s.generation[docID]++
	s.cache[docID] = clauses
	s.cacheMu.Unlock()

	logrus.WithFields(logrus.Fields{
		"doc_id":  docID,
		"source":  source,
		"clauses": len(clauses),
	}).Info("policy document stored")
	return len(clauses), nil
}

// Clauses returns the clauses of docID, or ErrNoDocument when it was never stored.
func (s *Service) Clauses(docID string) ([]string, error) {
	cached, gen, ok := s.lookupCache(docID)
	if ok {
		return cached, nil
	}
	if _, err := s.db.GetDocument(docID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("get policy %s: %w", docID, err)
	}
	clauses, err := s.db.ListClauses(docID)
	if err != nil {
		return nil, fmt.Errorf("list clauses of %s: %w", docID, err)
	}
	if clauses == nil {
		clauses = []string{}
	}
	s.storeCache(docID, gen, clauses)
	return clauses, nil
}

// Delete removes the document docID and its clauses.
func (s *Service) Delete(docID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.db.DeleteDocument(docID); err != nil {
		return fmt.Errorf("delete policy %s: %w", docID, err)
	}

	s.cacheMu.Lock()
	s.generation[docID]++
	delete(s.cache, docID)
	s.cacheMu.Unlock()

	logrus.WithField("doc_id", docID).Info("policy document deleted")
	return nil
}

// ActiveClauses returns the uploaded policy if there is one, else the sample policy.
func (s *Service) ActiveClauses() (string, []string, error) {
	for _, docID := range activeOrder {
		clauses, err := s.Clauses(docID)
		if errors.Is(err, ErrNoDocument) {
			continue
		}
		if err != nil {
			return "", nil, err
		}
		return docID, clauses, nil
	}
	return "", nil, ErrNoDocument
}

// Documents lists the stored policy documents.
func (s *Service) Documents() ([]store.PolicyDocument, error) {
	return s.db.ListDocuments()
}

func (s *Service) lookupCache(key string) ([]string, uint64, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	clauses, ok := s.cache[key]
	return clauses, s.generation[key], ok
}

// storeCache drops clauses loaded under a generation a later write has superseded.
func (s *Service) storeCache(key string, gen uint64, clauses []string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.generation[key] != gen {
		return
	}
	s.cache[key] = clauses
}
