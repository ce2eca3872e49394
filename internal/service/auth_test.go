package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brenowss/foodiary/internal/apperror"
	"github.com/brenowss/foodiary/internal/auth"
	"github.com/brenowss/foodiary/internal/logger"
	"github.com/brenowss/foodiary/internal/model"
	"github.com/brenowss/foodiary/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User

	// set to simulate database failures
	createErr error
	lookupErr error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	require.NoError(t, err)
	return ts
}

func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()
	return NewAuthService(repo, newTestTokens(t), auth.NewPasswordServiceWithCost(bcrypt.MinCost), logger.Discard())
}

func validSignUp() SignUpInput {
	return SignUpInput{
		Goal:          "lose",
		Gender:        "female",
		Weight:        70,
		Height:        170,
		BirthDate:     "1990-05-17",
		ActivityLevel: 3,
		Account: SignUpAccount{
			Name:     "Maria Silva",
			Email:    "maria@example.com",
			Password: "s3cret-pass",
		},
	}
}

func issueFields(t *testing.T, err error) []string {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	fields := make([]string, 0, len(appErr.Issues))
	for _, is := range appErr.Issues {
		fields = append(fields, is.Field)
	}
	return fields
}

// =========================================================================
// SignUp
// =========================================================================

func TestSignUp_CreatesUserAndToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	res, err := svc.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)
	require.NotNil(t, res.User)

	assert.NotEmpty(t, res.User.ID)
	assert.Equal(t, "Maria Silva", res.User.Name)
	assert.Equal(t, model.GoalLose, res.User.Goal)
	assert.Equal(t, model.GenderFemale, res.User.Gender)
	assert.Equal(t, model.Targets{}, res.User.Targets)
	assert.NotEqual(t, "s3cret-pass", res.User.PasswordHash)

	subject, err := newTestTokens(t).Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, subject)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, err := svc.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), validSignUp())
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, 1, repo.count())
}

func TestSignUp_ReportsEveryIssue(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	in := SignUpInput{
		Goal:          "bulk",
		Gender:        "other",
		Weight:        10,
		Height:        300,
		BirthDate:     "17/05/1990",
		ActivityLevel: 0,
		Account:       SignUpAccount{Name: "Al", Email: "not-an-email", Password: "short"},
	}
	_, err := svc.SignUp(context.Background(), in)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.ElementsMatch(t, []string{
		"goal", "gender", "weight", "height", "birthDate", "activityLevel",
		"account.name", "account.email", "account.password",
	}, issueFields(t, err))
}

func TestSignUp_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*SignUpInput)
		field string // "" means valid
	}{
		{"min weight", func(in *SignUpInput) { in.Weight = 40 }, ""},
		{"max weight", func(in *SignUpInput) { in.Weight = 200 }, ""},
		{"weight too high", func(in *SignUpInput) { in.Weight = 201 }, "weight"},
		{"min height", func(in *SignUpInput) { in.Height = 100 }, ""},
		{"height too low", func(in *SignUpInput) { in.Height = 99 }, "height"},
		{"activity 5", func(in *SignUpInput) { in.ActivityLevel = 5 }, ""},
		{"activity 6", func(in *SignUpInput) { in.ActivityLevel = 6 }, "activityLevel"},
		{"invalid date", func(in *SignUpInput) { in.BirthDate = "1990-02-30" }, "birthDate"},
		{"name 3 chars", func(in *SignUpInput) { in.Account.Name = "Ana" }, ""},
		{"blank name", func(in *SignUpInput) { in.Account.Name = "   " }, "account.name"},
		{"password 8 chars", func(in *SignUpInput) { in.Account.Password = "12345678" }, ""},
		{"password too long", func(in *SignUpInput) { in.Account.Password = strings.Repeat("a", 73) }, "account.password"},
		{"display name email", func(in *SignUpInput) { in.Account.Email = "Maria <maria@example.com>" }, "account.email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAuthService(t, newFakeUserRepo())
			in := validSignUp()
			tt.edit(&in)

			_, err := svc.SignUp(context.Background(), in)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, []string{tt.field}, issueFields(t, err))
		})
	}
}

func TestSignUp_RepositoryError(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = errors.New("database is on fire")
	svc := newTestAuthService(t, repo)

	_, err := svc.SignUp(context.Background(), validSignUp())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrConflict)
}

// =========================================================================
// SignIn and Me
// =========================================================================

func TestSignIn(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)
	res, err := svc.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	token, err := svc.SignIn(context.Background(), "maria@example.com", "s3cret-pass")
	require.NoError(t, err)
	subject, err := newTestTokens(t).Validate(token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, subject)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)
	_, err := svc.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	_, err = svc.SignIn(context.Background(), "maria@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.SignIn(context.Background(), "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestSignIn_Validation(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	_, err := svc.SignIn(context.Background(), "", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.ElementsMatch(t, []string{"email", "password"}, issueFields(t, err))
}

func TestSignIn_LookupError(t *testing.T) {
	repo := newFakeUserRepo()
	repo.lookupErr = errors.New("connection reset")
	svc := newTestAuthService(t, repo)

	_, err := svc.SignIn(context.Background(), "maria@example.com", "s3cret-pass")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestMe(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)
	res, err := svc.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	user, err := svc.Me(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", user.Email)

	_, err = svc.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Me(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
