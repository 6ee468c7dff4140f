package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
)

func quizAt(t *testing.T, svc *QuizService, day time.Time, question string, correct int) {
	t.Helper()
	_, err := svc.UpsertQuiz(day.UTC().Format("2006-01-02"), question, []string{"a", "b", "c"}, correct)
	require.NoError(t, err)
}

func TestQuizNoQuizToday(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db, nil)
	user := createUser(t, db, "player")

	_, err := svc.GetToday(user.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	_, err = svc.AnswerToday(user.ID, 0)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestQuizFirstCorrectAnswerStartsStreak(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db, nil)
	user := createUser(t, db, "player")

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }
	quizAt(t, svc, day, "q1", 1)

	result, err := svc.AnswerToday(user.ID, 1)
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 1, result.CurrentStreak)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 1, fresh.Streak)
}

func TestQuizConsecutiveDaysExtendStreak(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db, nil)
	user := createUser(t, db, "player")

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		current := day.AddDate(0, 0, i)
		svc.now = func() time.Time { return current }
		quizAt(t, svc, current, "q", 0)

		result, err := svc.AnswerToday(user.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, i+1, result.CurrentStreak)
	}

	streak, err := svc.GetStreak(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, streak.CurrentStreak)
}

func TestQuizGapRestartsStreak(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db, nil)
	user := createUser(t, db, "player")

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }
	quizAt(t, svc, day, "q", 0)
	_, err := svc.AnswerToday(user.ID, 0)
	require.NoError(t, err)

	// Skip a day; the next correct answer restarts at 1.
	later := day.AddDate(0, 0, 2)
	svc.now = func() time.Time { return later }
	quizAt(t, svc, later, "q", 0)

	result, err := svc.AnswerToday(user.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CurrentStreak)
}

func TestQuizWrongAnswerZeroesStreakAndConsumesAttempt(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db, nil)
	user := createUser(t, db, "player")

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }
	quizAt(t, svc, day, "q", 0)
	_, err := svc.AnswerToday(user.ID, 0)
	require.NoError(t, err)

	next := day.AddDate(0, 0, 1)
	svc.now = func() time.Time { return next }
	quizAt(t, svc, next, "q", 0)

	result, err := svc.AnswerToday(user.ID, 2)
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Equal(t, 0, result.CurrentStreak)
	assert.Equal(t, 0, result.CorrectAnswer)

	// The wrong attempt still used up the day.
	_, err = svc.AnswerToday(user.ID, 0)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 0, fresh.Streak)
}

func TestQuizGetTodayReportsAnsweredFlag(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db, nil)
	player := createUser(t, db, "player")
	bystander := createUser(t, db, "bystander")

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }
	quizAt(t, svc, day, "q1", 1)

	quiz, err := svc.GetToday(player.ID)
	require.NoError(t, err)
	assert.False(t, quiz.AnsweredToday)
	assert.Equal(t, "q1", quiz.Question)
	assert.Len(t, quiz.Options, 3)

	_, err = svc.AnswerToday(player.ID, 1)
	require.NoError(t, err)

	quiz, err = svc.GetToday(player.ID)
	require.NoError(t, err)
	assert.True(t, quiz.AnsweredToday)

	// A streak from a previous day does not count as answered today.
	quiz, err = svc.GetToday(bystander.ID)
	require.NoError(t, err)
	assert.False(t, quiz.AnsweredToday)

	next := day.AddDate(0, 0, 1)
	svc.now = func() time.Time { return next }
	quizAt(t, svc, next, "q2", 0)
	quiz, err = svc.GetToday(player.ID)
	require.NoError(t, err)
	assert.False(t, quiz.AnsweredToday)
}

func TestQuizSecondAttemptConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db, nil)
	user := createUser(t, db, "player")

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }
	quizAt(t, svc, day, "q", 1)

	_, err := svc.AnswerToday(user.ID, 1)
	require.NoError(t, err)

	_, err = svc.AnswerToday(user.ID, 1)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestQuizUpsertValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db, nil)

	_, err := svc.UpsertQuiz("March 10", "q", []string{"a", "b"}, 0)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	_, err = svc.UpsertQuiz("2026-03-10", "q", []string{"a"}, 0)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	_, err = svc.UpsertQuiz("2026-03-10", "q", []string{"a", "b"}, 2)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	quiz, err := svc.UpsertQuiz("2026-03-10", "first", []string{"a", "b"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "first", quiz.Question)

	// Replacing the same date keeps a single row.
	_, err = svc.UpsertQuiz("2026-03-10", "second", []string{"a", "b", "c"}, 2)
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&models.Quiz{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestStreakHeroBadgeBeyondThreshold(t *testing.T) {
	db := newTestDB(t)
	badges := NewBadgeService(db, 5, testLoungeSlug)
	svc := NewQuizService(db, badges)
	user := createUser(t, db, "devoted")

	day := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		current := day.AddDate(0, 0, i)
		svc.now = func() time.Time { return current }
		quizAt(t, svc, current, "q", 0)
		_, err := svc.AnswerToday(user.ID, 0)
		require.NoError(t, err)
	}

	var earned []models.UserBadge
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&earned).Error)
	names := make([]string, 0, len(earned))
	for _, b := range earned {
		names = append(names, b.Badge)
	}
	assert.Contains(t, names, BadgeDailyPlayer)
	assert.Contains(t, names, BadgeStreakHero)
}
