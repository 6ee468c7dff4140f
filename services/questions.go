package services

import (
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
	"github.com/mireadev/teamlink/utils"
)

// QuestionService owns the Q&A board: questions, answers and acceptance.
type QuestionService struct {
	db           *gorm.DB
	acceptPoints int
}

func NewQuestionService(db *gorm.DB, acceptPoints int) *QuestionService {
	return &QuestionService{db: db, acceptPoints: acceptPoints}
}

// QuestionSummary is a list row with its answer tally.
type QuestionSummary struct {
	models.Question
	Author      *AuthorSummary `json:"author"`
	AnswerCount int64          `json:"answer_count"`
}

// AnswerView is an answer with reactions and acceptance flags.
type AnswerView struct {
	models.Answer
	Author         *AuthorSummary   `json:"author"`
	ReactionCounts map[string]int64 `json:"reaction_counts"`
	IsAccepted     bool             `json:"is_accepted"`
}

// QuestionDetail is the full read projection of one question.
type QuestionDetail struct {
	models.Question
	Author  *AuthorSummary `json:"author"`
	Answers []AnswerView   `json:"answers"`
	IsMine  bool           `json:"is_mine"`
}

// CreateQuestion stores a new question.
func (s *QuestionService) CreateQuestion(authorID uint, title, body, tags string) (*QuestionSummary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.InvalidArg("question title cannot be empty")
	}
	question := models.Question{
		AuthorID: authorID,
		Title:    title,
		Body:     utils.Sanitize(body),
		Tags:     strings.TrimSpace(tags),
	}
	if err := s.db.Create(&question).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "create question", err)
	}

	var author models.User
	if err := s.db.First(&author, authorID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load author", err)
	}
	return &QuestionSummary{Question: question, Author: summarize(&author)}, nil
}

// ListQuestions returns questions newest first with their answer counts.
func (s *QuestionService) ListQuestions(limit int) ([]QuestionSummary, error) {
	limit = clampLimit(limit, 30, 100)

	var questions []models.Question
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&questions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "list questions", err)
	}
	if len(questions) == 0 {
		return []QuestionSummary{}, nil
	}

	ids := make([]uint, 0, len(questions))
	authorIDs := make([]uint, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
		authorIDs = append(authorIDs, q.AuthorID)
	}

	authors, err := authorSummaries(s.db, utils.UniqueUint(authorIDs))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load authors", err)
	}
	answerCounts, err := countsBy(s.db, &models.Answer{}, "question_id", ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "count answers", err)
	}

	out := make([]QuestionSummary, 0, len(questions))
	for _, q := range questions {
		out = append(out, QuestionSummary{
			Question:    q,
			Author:      authors[q.AuthorID],
			AnswerCount: answerCounts[q.ID],
		})
	}
	return out, nil
}

// GetQuestion loads one question with its answers. The accepted answer is
// pinned first; the rest sort by total reactions, then age.
func (s *QuestionService) GetQuestion(viewerID, questionID uint) (*QuestionDetail, error) {
	var question models.Question
	if err := s.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrQuestionNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load question", err)
	}

	var answers []models.Answer
	if err := s.db.Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&answers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load answers", err)
	}

	answerIDs := make([]uint, 0, len(answers))
	authorIDs := []uint{question.AuthorID}
	for _, a := range answers {
		answerIDs = append(answerIDs, a.ID)
		authorIDs = append(authorIDs, a.AuthorID)
	}

	authors, err := authorSummaries(s.db, utils.UniqueUint(authorIDs))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load authors", err)
	}
	reactionCounts, err := reactionCountsBy(s.db, "answer_id", answerIDs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "count reactions", err)
	}

	views := make([]AnswerView, 0, len(answers))
	for _, a := range answers {
		counts := reactionCounts[a.ID]
		if counts == nil {
			counts = map[string]int64{}
		}
		views = append(views, AnswerView{
			Answer:         a,
			Author:         authors[a.AuthorID],
			ReactionCounts: counts,
			IsAccepted:     question.AcceptedAnswerID != nil && *question.AcceptedAnswerID == a.ID,
		})
	}

	total := func(v AnswerView) int64 {
		var n int64
		for _, c := range v.ReactionCounts {
			n += c
		}
		return n
	}
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].IsAccepted != views[j].IsAccepted {
			return views[i].IsAccepted
		}
		ti, tj := total(views[i]), total(views[j])
		if ti != tj {
			return ti > tj
		}
		return views[i].CreatedAt.Before(views[j].CreatedAt)
	})

	return &QuestionDetail{
		Question: question,
		Author:   authors[question.AuthorID],
		Answers:  views,
		IsMine:   viewerID != 0 && viewerID == question.AuthorID,
	}, nil
}

// CreateAnswer posts an answer. Answering your own question is refused.
func (s *QuestionService) CreateAnswer(authorID, questionID uint, content string) (*AnswerView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrEmptyContent
	}

	var question models.Question
	if err := s.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrQuestionNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load question", err)
	}
	if question.AuthorID == authorID {
		return nil, apperrors.ErrOwnQuestion
	}

	answer := models.Answer{
		QuestionID: questionID,
		AuthorID:   authorID,
		Content:    utils.Sanitize(content),
	}
	if err := s.db.Create(&answer).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "create answer", err)
	}

	var author models.User
	if err := s.db.First(&author, authorID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load author", err)
	}
	return &AnswerView{
		Answer:         answer,
		Author:         summarize(&author),
		ReactionCounts: map[string]int64{},
	}, nil
}

// AcceptAnswer marks an answer as accepted, question author only. Moving the
// mark to a different answer compensates: the previous winner loses the award
// and the new one gains it, both floored at zero, in one transaction.
func (s *QuestionService) AcceptAnswer(callerID, questionID, answerID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.First(&question, questionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrQuestionNotFound
			}
			return err
		}
		if question.AuthorID != callerID {
			return apperrors.ErrNotQuestionAuthor
		}

		var answer models.Answer
		if err := tx.First(&answer, answerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrAnswerNotFound
			}
			return err
		}
		if answer.QuestionID != questionID {
			return apperrors.InvalidArg("answer belongs to a different question")
		}

		if question.AcceptedAnswerID != nil && *question.AcceptedAnswerID == answerID {
			return nil
		}

		if question.AcceptedAnswerID != nil {
			var previous models.Answer
			if err := tx.First(&previous, *question.AcceptedAnswerID).Error; err == nil {
				if err := adjustPoints(tx, previous.AuthorID, -s.acceptPoints); err != nil {
					return err
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if err := adjustPoints(tx, answer.AuthorID, s.acceptPoints); err != nil {
			return err
		}

		return tx.Model(&question).Update("accepted_answer_id", answerID).Error
	})
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeUnknown {
			return err
		}
		return apperrors.Wrap(apperrors.CodeInternal, "accept answer", err)
	}
	return nil
}
