package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
	"github.com/mireadev/teamlink/utils"
)

const assistTopDocs = 3

// Generator produces an answer grounded on the supplied context snippets.
type Generator interface {
	Generate(ctx context.Context, question string, contextBlocks []string) (string, error)
}

// AssistService answers free-form questions from the knowledge base: it ranks
// stored documents against the question and hands the best matches to the
// generator as grounding context.
type AssistService struct {
	db        *gorm.DB
	ranker    Ranker
	generator Generator
}

func NewAssistService(db *gorm.DB, ranker Ranker, generator Generator) *AssistService {
	return &AssistService{db: db, ranker: ranker, generator: generator}
}

// AssistAnswer is one generated answer with its sources.
type AssistAnswer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Ask ranks the knowledge base against the question and generates an answer
// from the top matches.
func (s *AssistService) Ask(ctx context.Context, question string) (*AssistAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.ErrEmptyContent
	}

	var docs []models.KBDoc
	if err := s.db.Find(&docs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load documents", err)
	}

	candidates := make([]Document, 0, len(docs))
	for _, d := range docs {
		candidates = append(candidates, Document{ID: d.ID, Title: d.Title, Content: d.Content, Tags: d.Tags})
	}
	top := s.ranker.Rank(question, candidates, assistTopDocs)

	blocks := make([]string, 0, len(top))
	sources := make([]string, 0, len(top))
	for _, d := range top {
		blocks = append(blocks, fmt.Sprintf("%s\n%s", d.Title, d.Content))
		sources = append(sources, d.Title)
	}

	answer, err := s.generator.Generate(ctx, question, blocks)
	if err != nil {
		// The upstream cause stays out of the response.
		utils.Sugar.Warnf("assist generation failed: %v", err)
		return nil, apperrors.ErrGenerationFailed
	}
	return &AssistAnswer{Answer: answer, Sources: sources}, nil
}

// CreateDoc stores a knowledge base document. Admin only, enforced by the
// caller.
func (s *AssistService) CreateDoc(authorID uint, title, content, tags string) (*models.KBDoc, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return nil, apperrors.InvalidArg("document title and content are required")
	}
	doc := models.KBDoc{
		Title:   title,
		Content: utils.Sanitize(content),
		Tags:    strings.TrimSpace(tags),
	}
	if authorID != 0 {
		doc.AuthorID = &authorID
	}
	if err := s.db.Create(&doc).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "create document", err)
	}
	return &doc, nil
}

// ListDocs returns all knowledge base documents, newest first.
func (s *AssistService) ListDocs() ([]models.KBDoc, error) {
	var docs []models.KBDoc
	if err := s.db.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "list documents", err)
	}
	return docs, nil
}

// UpdateDoc patches a document's fields.
func (s *AssistService) UpdateDoc(docID uint, title, content, tags *string) (*models.KBDoc, error) {
	var doc models.KBDoc
	if err := s.db.First(&doc, docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDocNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load document", err)
	}
	if title != nil {
		doc.Title = strings.TrimSpace(*title)
	}
	if content != nil {
		doc.Content = utils.Sanitize(*content)
	}
	if tags != nil {
		doc.Tags = strings.TrimSpace(*tags)
	}
	if err := s.db.Save(&doc).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "update document", err)
	}
	return &doc, nil
}

// DeleteDoc removes a document.
func (s *AssistService) DeleteDoc(docID uint) error {
	result := s.db.Delete(&models.KBDoc{}, docID)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "delete document", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrDocNotFound
	}
	return nil
}
