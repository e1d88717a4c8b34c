package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/codequest-labs/codequest-api/internal/models"
	"github.com/codequest-labs/codequest-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fakeUserRepo struct {
	users   map[uint]models.User
	nextID  uint
	updates int
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uint]models.User), nextID: 1}
	for _, user := range users {
		if user.ID >= repo.nextID {
			repo.nextID = user.ID + 1
		}
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.updates++
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) ListActiveSince(ctx context.Context, since time.Time) ([]models.User, error) {
	var active []models.User
	for _, user := range f.users {
		if user.LastLogin != nil && !user.LastLogin.Before(since) {
			active = append(active, user)
		}
	}
	return active, nil
}

type fakeProgressRepo struct {
	records map[uint]models.ProgressRecord
	nextID  uint
	saves   int
	clears  int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: make(map[uint]models.ProgressRecord), nextID: 1}
}

func (f *fakeProgressRepo) GetOrCreate(ctx context.Context, userID uint) (models.ProgressRecord, error) {
	if record, ok := f.records[userID]; ok {
		return record, nil
	}
	record := models.ProgressRecord{ID: f.nextID, UserID: userID}
	f.nextID++
	f.records[userID] = record
	return record, nil
}

func (f *fakeProgressRepo) Save(ctx context.Context, record *models.ProgressRecord) error {
	f.saves++
	f.records[record.UserID] = *record
	return nil
}

func (f *fakeProgressRepo) ClearQuizScores(ctx context.Context, recordID uint) error {
	f.clears++
	for userID, record := range f.records {
		if record.ID == recordID {
			record.QuizScores = nil
			f.records[userID] = record
		}
	}
	return nil
}

type fakeAttemptRepo struct {
	attempts []models.QuizAttempt
	nextID   uint
}

func newFakeAttemptRepo(attempts ...models.QuizAttempt) *fakeAttemptRepo {
	repo := &fakeAttemptRepo{nextID: 1}
	for _, attempt := range attempts {
		_ = repo.Create(context.Background(), &attempt)
	}
	return repo
}

func (f *fakeAttemptRepo) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	attempt.ID = f.nextID
	f.nextID++
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeAttemptRepo) List(ctx context.Context, filter repository.QuizAttemptFilter) ([]models.QuizAttempt, error) {
	var matched []models.QuizAttempt
	for _, attempt := range f.attempts {
		if filter.UserID != nil && attempt.UserID != *filter.UserID {
			continue
		}
		if filter.QuizID != nil && attempt.QuizID != *filter.QuizID {
			continue
		}
		if filter.Completed != nil && attempt.Completed != *filter.Completed {
			continue
		}
		matched = append(matched, attempt)
	}
	return matched, nil
}

type fakeCatalogRepo struct {
	achievements []models.Achievement
}

func (f *fakeCatalogRepo) List(ctx context.Context) ([]models.Achievement, error) {
	return f.achievements, nil
}

func (f *fakeCatalogRepo) UpsertBatch(ctx context.Context, achievements []models.Achievement) (int64, error) {
	f.achievements = achievements
	return int64(len(achievements)), nil
}

type recordingNotifier struct {
	earned []string
}

func (r *recordingNotifier) AchievementEarned(ctx context.Context, user models.User, achievement models.Achievement) {
	r.earned = append(r.earned, achievement.Title)
}
