package app

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"scholarforge/internal/model"
)

var ErrWrongPassword = fmt.Errorf("%w: current password does not match", ErrInvalidCredential)

type ProfileService struct {
	userRepo UserStore
	purgers  []UserDataPurger
	logger   *zap.Logger
}

// UpdateProfileInput leaves a field untouched when its pointer is nil.
type UpdateProfileInput struct {
	DisplayName *string
	Email       *string
	Institution *string
	Role        *string
	Avatar      *string
	Theme       *string
}

type ChangePasswordInput struct {
	Current string
	New     string
}

func NewProfileService(userRepo UserStore, logger *zap.Logger, purgers ...UserDataPurger) *ProfileService {
	return &ProfileService{userRepo: userRepo, purgers: purgers, logger: logger}
}

func (s *ProfileService) Get(userID uint) (*model.User, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *ProfileService) Update(userID uint, input UpdateProfileInput) (*model.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" || len(name) > 128 {
			return nil, ErrInvalidInput
		}
		user.DisplayName = name
	}
	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, ErrInvalidInput
		}
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, ErrEmailExists
			}
			user.Email = email
		}
	}
	if input.Institution != nil {
		user.Institution = strings.TrimSpace(*input.Institution)
	}
	if input.Role != nil {
		if !model.ValidRole(*input.Role) {
			return nil, ErrInvalidInput
		}
		user.Role = *input.Role
	}
	if input.Avatar != nil {
		user.Avatar = strings.TrimSpace(*input.Avatar)
	}
	if input.Theme != nil {
		if !model.ValidTheme(*input.Theme) {
			return nil, ErrInvalidInput
		}
		user.Theme = *input.Theme
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *ProfileService) ChangePassword(userID uint, input ChangePasswordInput) error {
	if len(strings.TrimSpace(input.New)) < 8 {
		return ErrInvalidInput
	}
	user, err := s.Get(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(strings.TrimSpace(input.Current))); err != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(input.New)), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}
	user.PasswordHash = string(hash)
	return s.userRepo.Update(user)
}

// Delete removes the account after every registered purger has cleared
// its data for the user.
func (s *ProfileService) Delete(ctx context.Context, userID uint) error {
	if _, err := s.Get(userID); err != nil {
		return err
	}
	for _, p := range s.purgers {
		if err := p.PurgeUser(ctx, userID); err != nil {
			return fmt.Errorf("purge user data failed: %w", err)
		}
	}
	if err := s.userRepo.Delete(userID); err != nil {
		return err
	}
	s.logger.Info("account deleted", zap.Uint("user_id", userID))
	return nil
}
