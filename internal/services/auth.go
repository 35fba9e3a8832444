package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farellandr/eventick/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	*Repository[models.AdminUser]
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		Repository: NewRepository[models.AdminUser](db, Resource{
			Search: []string{"LOWER(email) LIKE ?", "LOWER(phone) LIKE ?"},
			Order:  newestFirst,
		}),
		db:     db,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

type CreateUserInput struct {
	Email              string `json:"email" binding:"required,email"`
	Phone              string `json:"phone" binding:"required"`
	Password           string `json:"password" binding:"required,min=6"`
	IsAdmin            bool   `json:"is_admin"`
	IsPaymentProcessor bool   `json:"is_payment_processor"`
}

func (s *AuthService) CreateUser(ctx context.Context, in CreateUserInput) (*models.AdminUser, error) {
	if in.Email == "" {
		return nil, errors.New("users must have an email address")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.AdminUser{
		Email:              models.NormalizeEmail(in.Email),
		Phone:              in.Phone,
		Password:           string(hashed),
		IsActive:           true,
		IsAdmin:            in.IsAdmin,
		IsPaymentProcessor: in.IsPaymentProcessor,
	}
	if err := s.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns a signed token for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.AdminUser, error) {
	var user models.AdminUser
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, models.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, models.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, models.ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"staff": user.IsStaff(),
		"exp":   time.Now().Add(s.ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, &user, nil
}

// Authenticate resolves a bearer token to an active staff user.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.AdminUser, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, models.ErrInvalidCredentials
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return nil, models.ErrInvalidCredentials
	}
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || !user.IsStaff() {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}
