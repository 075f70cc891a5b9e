package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/milesync/milesync-backend/internal/apierr"
	"github.com/milesync/milesync-backend/internal/logger"
	"github.com/milesync/milesync-backend/internal/normalization"
	"github.com/milesync/milesync-backend/internal/repos"
	"github.com/milesync/milesync-backend/internal/requestdata"
	"github.com/milesync/milesync-backend/internal/types"
	"github.com/milesync/milesync-backend/internal/utils"
)

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	utils.NormalizeUserFields(user)
	if vErr := utils.ValidateRegistration(ctx, as.userRepo, as.log, user); vErr != nil {
		return apierr.Validation("%s", vErr.Error())
	}
	if hErr := utils.HashPassword(user); hErr != nil {
		return hErr
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.ID = uuid.New()
		user.IsActive = true
		if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = normalization.ParseInputString(email)
	if vErr := utils.ValidateLogin(email, password); vErr != nil {
		return "", "", apierr.Validation("%s", vErr.Error())
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("error retrieving user by email: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return "", "", apierr.Unauthorized("invalid email or password")
	}
	user := users[0]
	if !user.IsActive {
		return "", "", apierr.Unauthorized("account is deactivated")
	}
	if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
		return "", "", apierr.Unauthorized("invalid email or password")
	}

	var accessToken string
	var refreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A fresh login invalidates any previous session tokens.
		if dErr := as.userTokenRepo.FullDeleteByUserIDs(ctx, tx, []uuid.UUID{user.ID}); dErr != nil {
			return fmt.Errorf("failed to clear previous user tokens: %w", dErr)
		}
		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token error: %w", genErr)
		}
		accessToken = tok
		refreshToken = uuid.New().String()
		userToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); cErr != nil {
			as.log.Warn("Create user token error", "error", cErr)
			return fmt.Errorf("create user token error: %w", cErr)
		}
		return nil
	}); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return "", "", apierr.Unauthorized("no request data found in context")
	}
	if rd.RefreshToken == "" {
		return "", "", apierr.Unauthorized("refresh token not provided")
	}

	var accessToken string
	var newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
		if ftErr != nil {
			return fmt.Errorf("error fetching refresh token: %w", ftErr)
		}
		if len(foundTokens) == 0 || foundTokens[0] == nil {
			return apierr.Unauthorized("unknown refresh token")
		}
		existingToken := foundTokens[0]
		if existingToken.ExpiresAt.Before(time.Now()) {
			if dErr := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); dErr != nil {
				return fmt.Errorf("refresh token expired, error deleting: %w", dErr)
			}
			return apierr.Unauthorized("refresh token expired")
		}
		users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existingToken.UserID})
		if uErr != nil {
			return fmt.Errorf("failed to load user for refresh: %w", uErr)
		}
		if len(users) == 0 || users[0] == nil {
			return apierr.Unauthorized("no user found for the given refresh token")
		}
		user := users[0]

		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("failed to generate new access token: %w", genErr)
		}
		accessToken = tok
		newRefreshToken = uuid.New().String()

		if dErr := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); dErr != nil {
			return fmt.Errorf("failed to rotate refresh token: %w", dErr)
		}
		userToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); cErr != nil {
			return fmt.Errorf("create user token error: %w", cErr)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized("no request data found in context")
	}
	return as.userTokenRepo.FullDeleteByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
}

// SetContextFromToken verifies an access token and attaches request data to
// the context. The token must parse, carry a known user id and still exist
// in the user_token table.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, apierr.Unauthorized("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, apierr.Unauthorized("invalid token claims")
	}
	userIDStr, _ := claims["user_id"].(string)
	userID, parseErr := uuid.Parse(userIDStr)
	if parseErr != nil {
		return ctx, apierr.Unauthorized("invalid user id in token")
	}

	foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if ftErr != nil {
		return ctx, fmt.Errorf("error checking access token: %w", ftErr)
	}
	if len(foundTokens) == 0 || foundTokens[0] == nil {
		return ctx, apierr.Unauthorized("token has been revoked")
	}

	users, uErr := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if uErr != nil {
		return ctx, fmt.Errorf("error loading user: %w", uErr)
	}
	if len(users) == 0 || users[0] == nil {
		return ctx, apierr.Unauthorized("user not found")
	}
	if !users[0].IsActive {
		return ctx, apierr.Unauthorized("account is deactivated")
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"iat":     now.Unix(),
		"exp":     now.Add(as.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
