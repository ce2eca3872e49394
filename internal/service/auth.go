// Package service holds the business rules between the HTTP handlers and the
// repositories:
//
//	Handler (HTTP) → Service (validation, orchestration) → Repository (DB)
//
// Services never see HTTP types. They return apperror kinds that the handler
// layer maps to status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brenowss/foodiary/internal/apperror"
	"github.com/brenowss/foodiary/internal/auth"
	"github.com/brenowss/foodiary/internal/model"
	"github.com/brenowss/foodiary/internal/repository"
	"github.com/brenowss/foodiary/internal/validation"
)

// Sign-up limits.
const (
	MinNameLength     = 3
	MinPasswordLength = 8
	MinWeight         = 40
	MaxWeight         = 200
	MinHeight         = 100
	MaxHeight         = 250
	MinActivityLevel  = 1
	MaxActivityLevel  = 5
)

// AuthService signs users up and in and resolves the current account.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

type SignUpAccount struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpInput struct {
	Goal          string        `json:"goal"`
	Gender        string        `json:"gender"`
	Weight        int           `json:"weight"`
	Height        int           `json:"height"`
	BirthDate     string        `json:"birthDate"`
	ActivityLevel int           `json:"activityLevel"`
	Account       SignUpAccount `json:"account"`
}

// AuthResult bundles the account and its access token.
type AuthResult struct {
	User  *model.User
	Token string
}

func (in SignUpInput) validate() error {
	var v validation.Validator

	goals := make([]string, len(model.Goals))
	for i, g := range model.Goals {
		goals[i] = string(g)
	}
	genders := make([]string, len(model.Genders))
	for i, g := range model.Genders {
		genders[i] = string(g)
	}

	v.OneOf("goal", in.Goal, goals...)
	v.OneOf("gender", in.Gender, genders...)
	v.Between("weight", in.Weight, MinWeight, MaxWeight)
	v.Between("height", in.Height, MinHeight, MaxHeight)
	v.Date("birthDate", in.BirthDate)
	v.Between("activityLevel", in.ActivityLevel, MinActivityLevel, MaxActivityLevel)

	if v.Required("account.name", in.Account.Name) {
		v.MinLen("account.name", strings.TrimSpace(in.Account.Name), MinNameLength)
	}
	if v.Required("account.email", in.Account.Email) {
		v.Email("account.email", in.Account.Email)
	}
	if v.Required("account.password", in.Account.Password) {
		v.MinLen("account.password", in.Account.Password, MinPasswordLength)
		v.Check(len(in.Account.Password) <= auth.MaxPasswordBytes, "account.password",
			fmt.Sprintf("account.password must be %d bytes or fewer", auth.MaxPasswordBytes))
	}
	return v.Err()
}

// SignUp creates an account and returns it with a fresh access token.
// A taken email is an apperror.ErrConflict and creates nothing.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, in.Account.Email)
	switch {
	case err == nil:
		return nil, apperror.Conflict("user", in.Account.Email)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(in.Account.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Name:          strings.TrimSpace(in.Account.Name),
		Email:         in.Account.Email,
		PasswordHash:  hash,
		Goal:          model.Goal(in.Goal),
		Gender:        model.Gender(in.Gender),
		BirthDate:     in.BirthDate,
		Height:        in.Height,
		Weight:        in.Weight,
		ActivityLevel: in.ActivityLevel,
	}
	// The repository reports a concurrent duplicate as a conflict too.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user signed up", slog.String("user_id", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// SignIn returns an access token. Unknown email and wrong password are the
// same apperror.ErrUnauthorized.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, error) {
	var v validation.Validator
	if v.Required("email", email) {
		v.Email("email", email)
	}
	v.Required("password", password)
	if err := v.Err(); err != nil {
		return "", err
	}

	invalid := apperror.Unauthorized("invalid credentials")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", invalid
		}
		return "", fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return "", invalid
		}
		return "", fmt.Errorf("service/auth: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return token, nil
}

// Me returns the account behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("missing user")
	}
	return s.users.GetByID(ctx, userID)
}
