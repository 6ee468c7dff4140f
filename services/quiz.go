package services

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
	"github.com/mireadev/teamlink/utils"
)

const quizDateLayout = "2006-01-02"

// QuizService runs the daily challenge. Days are UTC calendar dates; a streak
// continues only when the previous correct answer was exactly yesterday.
type QuizService struct {
	db     *gorm.DB
	badges *BadgeService
	now    func() time.Time
}

func NewQuizService(db *gorm.DB, badges *BadgeService) *QuizService {
	return &QuizService{db: db, badges: badges, now: time.Now}
}

// QuizView is a quiz without the correct answer.
type QuizView struct {
	ID       uint     `json:"id"`
	Date     string   `json:"date"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// TodayQuiz is today's quiz plus whether the viewer already spent today's
// attempt.
type TodayQuiz struct {
	QuizView
	AnsweredToday bool `json:"answered_today"`
}

// AnswerResult reports one answer attempt.
type AnswerResult struct {
	Correct       bool `json:"correct"`
	CorrectAnswer int  `json:"correct_answer"`
	CurrentStreak int  `json:"current_streak"`
}

// GetToday returns today's quiz, if one is scheduled, along with whether the
// viewer already answered it. The answered flag is the viewer's streak row
// compared against today's date string.
func (s *QuizService) GetToday(viewerID uint) (*TodayQuiz, error) {
	today := s.now().UTC().Format(quizDateLayout)
	var quiz models.Quiz
	if err := s.db.Where("date = ?", today).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoQuizToday
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load quiz", err)
	}
	view, err := quizView(&quiz)
	if err != nil {
		return nil, err
	}

	out := &TodayQuiz{QuizView: *view}
	if viewerID != 0 {
		var streak models.Streak
		err := s.db.Where("user_id = ?", viewerID).First(&streak).Error
		switch {
		case err == nil:
			out.AnsweredToday = streak.LastAnsweredDate == today
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return nil, apperrors.Wrap(apperrors.CodeInternal, "load streak", err)
		}
	}
	return out, nil
}

// AnswerToday records one attempt at today's quiz. Each user gets a single
// attempt per day; a second attempt fails with already_answered regardless of
// the first outcome. A correct answer sets the streak to previous+1 when the
// last answered day was exactly yesterday, otherwise restarts it at 1. A wrong
// answer zeroes the streak but still consumes the attempt.
func (s *QuizService) AnswerToday(userID uint, choice int) (*AnswerResult, error) {
	now := s.now().UTC()
	today := now.Format(quizDateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(quizDateLayout)

	var quiz models.Quiz
	if err := s.db.Where("date = ?", today).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoQuizToday
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load quiz", err)
	}

	result := &AnswerResult{
		Correct:       choice == quiz.CorrectAnswer,
		CorrectAnswer: quiz.CorrectAnswer,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var streak models.Streak
		err := lockForUpdate(tx).
			Where("user_id = ?", userID).First(&streak).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		exists := err == nil

		if exists && streak.LastAnsweredDate == today {
			return apperrors.ErrAlreadyAnswered
		}

		next := 0
		if result.Correct {
			if exists && streak.LastAnsweredDate == yesterday {
				next = streak.CurrentStreak + 1
			} else {
				next = 1
			}
		}
		result.CurrentStreak = next

		if exists {
			streak.CurrentStreak = next
			streak.LastAnsweredDate = today
			if err := tx.Save(&streak).Error; err != nil {
				return err
			}
		} else {
			streak = models.Streak{UserID: userID, CurrentStreak: next, LastAnsweredDate: today}
			if err := tx.Create(&streak).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("streak", next).Error
	})
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeUnknown {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "record answer", err)
	}

	if s.badges != nil {
		if _, err := s.badges.Recompute(userID); err != nil {
			utils.Sugar.Warnf("badge recompute after quiz failed: user=%d err=%v", userID, err)
		}
	}
	return result, nil
}

// GetStreak returns the viewer's streak state; users who never answered get a
// zero streak rather than an error.
func (s *QuizService) GetStreak(userID uint) (*models.Streak, error) {
	var streak models.Streak
	if err := s.db.Where("user_id = ?", userID).First(&streak).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Streak{UserID: userID}, nil
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load streak", err)
	}
	return &streak, nil
}

// UpsertQuiz schedules or replaces the quiz for a date. Admin only, enforced
// by the caller.
func (s *QuizService) UpsertQuiz(date, question string, options []string, correct int) (*QuizView, error) {
	if _, err := time.Parse(quizDateLayout, date); err != nil {
		return nil, apperrors.InvalidArg("date must be YYYY-MM-DD")
	}
	if len(options) < 2 {
		return nil, apperrors.InvalidArg("a quiz needs at least two options")
	}
	if correct < 0 || correct >= len(options) {
		return nil, apperrors.InvalidArg("correct answer index out of range")
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "encode options", err)
	}

	var quiz models.Quiz
	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("date = ?", date).First(&quiz).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		quiz.Date = date
		quiz.Question = question
		quiz.Options = string(raw)
		quiz.CorrectAnswer = correct
		return tx.Save(&quiz).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "store quiz", err)
	}
	return quizView(&quiz)
}

func quizView(q *models.Quiz) (*QuizView, error) {
	var options []string
	if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "decode options", err)
	}
	return &QuizView{ID: q.ID, Date: q.Date, Question: q.Question, Options: options}, nil
}
