package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/models"
	"github.com/pageza/chefbook/backend/internal/types"
	"github.com/pageza/chefbook/backend/internal/util"
	"github.com/pageza/chefbook/backend/internal/validation"
)

const tokenIssuer = "chefbook"

var errInvalidCredentials = errors.Unauthorized("invalid credentials")

// AuthService registers and authenticates users and manages their accounts.
type AuthService struct {
	db        *gorm.DB
	validator *validation.Validator
	log       *slog.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(db *gorm.DB, v *validation.Validator, log *slog.Logger, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		db:        db,
		validator: v,
		log:       log.With("component", "auth_service"),
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, req types.RegisterRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		ProfilePic:   req.ProfilePic,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if util.IsDuplicateKey(err) {
			return nil, errors.DuplicateName("username or email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return &user, nil
}

// Login checks credentials and returns the user. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req types.LoginRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	return &user, nil
}

// GenerateToken signs an HS256 token for the user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, errors.Unauthorized("invalid token").WithCause(err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.Unauthorized("invalid token")
	}
	return claims, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (s *AuthService) UpdateAccount(ctx context.Context, actor types.Actor, req types.UpdateAccountRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	user, err := s.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Username != nil {
		updates["username"] = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.ProfilePic != nil {
		updates["profile_pic"] = *req.ProfilePic
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if util.IsDuplicateKey(err) {
			return nil, errors.DuplicateName("username or email already registered")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetUser(ctx, actor.UserID)
}

// DeleteAccount removes a user. Users may delete themselves; admins may
// delete anyone. The user's favorites go with the account and their recipes
// are kept without an owner.
func (s *AuthService) DeleteAccount(ctx context.Context, actor types.Actor, userID uint) error {
	if actor.UserID != userID && !actor.IsAdmin {
		return errors.Forbidden("cannot delete another user's account")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return notFoundOr(err, "user")
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("delete favorites: %w", err)
		}
		if err := tx.Table("recipes").Where("owner_id = ?", userID).Update("owner_id", nil).Error; err != nil {
			return fmt.Errorf("release recipes: %w", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("account deleted", "user_id", userID, "by", actor.UserID)
	return nil
}
