package app

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"scholarforge/internal/model"
	"scholarforge/internal/pkg/jwtutil"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrUserNotFound      = errors.New("user not found")
)

type AuthService struct {
	userRepo      UserStore
	jwtSecret     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	Institution string
	Role        string
}

// LoginInput.Username also accepts the account email.
type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

const minPasswordLength = 8

func NewAuthService(userRepo UserStore, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	user, password, err := newUser(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(user.Username, user.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	identifier := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if identifier == "" || password == "" {
		return nil, ErrInvalidInput
	}

	var (
		user *model.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(strings.ToLower(identifier))
	} else {
		user, err = s.userRepo.GetByUsername(identifier)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}
	return s.issue(user)
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) ensureAvailable(username, email string) error {
	byName, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return err
	}
	if byName != nil {
		return ErrUsernameExists
	}
	byEmail, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if byEmail != nil {
		return ErrEmailExists
	}
	return nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// newUser normalizes the registration form into a user without a password
// hash and returns the trimmed password separately.
func newUser(input RegisterInput) (*model.User, string, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || strings.Contains(username, "@") || len(password) < minPasswordLength {
		return nil, "", ErrInvalidInput
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(input.Email))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = model.RoleStudent
	}
	if !model.ValidRole(role) {
		return nil, "", ErrInvalidInput
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = username
	}

	return &model.User{
		Username:    username,
		Email:       strings.ToLower(addr.Address),
		DisplayName: displayName,
		Institution: strings.TrimSpace(input.Institution),
		Role:        role,
		Theme:       model.ThemeLight,
	}, password, nil
}
