package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	repo "github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/apperror"
	"github.com/oksasatya/go-library-api/pkg/helpers"
	"github.com/oksasatya/go-library-api/pkg/mailer"
	mailtpl "github.com/oksasatya/go-library-api/pkg/mailer/templates"
)

// JobPublisher puts a JSON job on the email queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type UserService struct {
	Users  repo.UserRepository
	Images *ProfileImageManager
	JWT    *helpers.JWTManager
	Logger *logrus.Logger

	// Optional collaborators; nil disables the feature.
	Locker repo.UserLocker
	Redis  *redis.Client
	Jobs   JobPublisher

	AppName  string
	NotifyTo string // operator address for registration and orphan notices

	// OpTimeout bounds work done under the per-user lock; keep it below the lock TTL.
	OpTimeout time.Duration
}

func NewUserService(users repo.UserRepository, images *ProfileImageManager, jwt *helpers.JWTManager, logger *logrus.Logger) *UserService {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &UserService{Users: users, Images: images, JWT: jwt, Logger: logger}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// ImageUpload is an image file taken from a request.
type ImageUpload struct {
	Data        []byte
	ContentType string
}

type RegisterInput struct {
	Login       string
	Password    string
	FullName    string
	Country     string
	DateOfBirth time.Time
	IP          string
}

// RegisterResult carries the created user. ImageErr is set when the account
// was created but its image could not be attached.
type RegisterResult struct {
	User     *entity.User
	ImageErr error
}

// UpdateProfileInput is a patch; nil fields are left untouched.
type UpdateProfileInput struct {
	Login       *string
	Password    *string
	FullName    *string
	Country     *string
	DateOfBirth *time.Time
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

var errInvalidCredentials = apperror.New(apperror.KindUnauthorized, "invalid login or password")

// Register creates a user. A taken login fails before anything is written.
func (s *UserService) Register(ctx context.Context, in RegisterInput, image *ImageUpload) (*RegisterResult, error) {
	if image != nil {
		if err := checkImage(image.Data, image.ContentType); err != nil {
			return nil, err
		}
	}
	if _, err := s.Users.GetByLogin(ctx, in.Login); err == nil {
		return nil, apperror.New(apperror.KindConflictingLogin, "login already taken")
	} else if apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}

	hash, salt, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "hash password", err)
	}
	u := &entity.User{
		ID:           uuid.NewString(),
		Login:        in.Login,
		PasswordHash: hash,
		PasswordSalt: salt,
		FullName:     in.FullName,
		Country:      in.Country,
		DateOfBirth:  in.DateOfBirth,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "login": u.Login}).Info("user registered")

	res := &RegisterResult{User: u}
	if image != nil {
		if _, err := s.Images.AttachNewImage(ctx, u.ID, image.Data, image.ContentType); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("registration image not attached")
			s.reportOrphan(ctx, u.ID, err)
			res.ImageErr = err
		}
		if fresh, err := s.Users.GetByID(ctx, u.ID); err == nil {
			res.User = fresh
		}
	}

	s.notify(ctx, mailtpl.UserRegistered, mailtpl.NewUserRegisteredData(
		s.AppName, s.NotifyTo, u.ID, u.Login, u.FullName, u.Country, mailtpl.WithIP(in.IP)))
	return res, nil
}

// Authenticate checks login/password and returns the user without issuing tokens.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*entity.User, error) {
	u, err := s.Users.GetByLogin(ctx, login)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !helpers.VerifyPassword(password, u.PasswordHash, u.PasswordSalt) {
		return nil, errInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Login(ctx context.Context, login, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.tokens(u.ID, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		return TokenPair{}, apperror.Wrap(apperror.KindInternal, "generate tokens", err)
	}

	if s.Redis != nil {
		key := helpers.SessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    u.ID,
			"login":      u.Login,
			"full_name":  u.FullName,
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, s.JWT.RefreshTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return pair, nil
}

func (s *UserService) tokens(userID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh validates the refresh token against the stored session and rotates both tokens.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", apperror.Wrap(apperror.KindUnauthorized, "invalid refresh token", err)
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, "", apperror.New(apperror.KindUnauthorized, "invalid refresh token")
	}
	key := helpers.SessionKey(u.ID)
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", apperror.New(apperror.KindUnauthorized, "session expired")
		}
	}

	sid := uuid.NewString()
	pair, err := s.tokens(u.ID, sid)
	if err != nil {
		return TokenPair{}, "", apperror.Wrap(apperror.KindInternal, "generate tokens", err)
	}
	if s.Redis != nil {
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"sid":        sid,
			"updated_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, s.JWT.RefreshTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return pair, u.ID, nil
}

// Logout drops the session so outstanding tokens stop working.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if s.Redis == nil {
		return nil
	}
	if err := s.Redis.Del(ctx, helpers.SessionKey(userID)).Err(); err != nil {
		return apperror.Wrap(apperror.KindInternal, "drop session", err)
	}
	return nil
}

// GetProfile returns the user joined with its profile image.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return s.Users.GetByID(ctx, userID)
}

// UpdateProfile stages the image, applies the patch, then links the image.
// Both inputs are checked before anything is written, and a failed upload
// leaves the profile fields untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput, image *ImageUpload) (*entity.User, error) {
	if image != nil {
		if err := checkImage(image.Data, image.ContentType); err != nil {
			return nil, err
		}
	}
	patch := repo.UserPatch{
		Login:       in.Login,
		FullName:    in.FullName,
		Country:     in.Country,
		DateOfBirth: in.DateOfBirth,
	}
	if in.Password != nil {
		hash, salt, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindInternal, "hash password", err)
		}
		patch.PasswordHash, patch.PasswordSalt = &hash, &salt
	}
	if patch.Empty() && image == nil {
		return nil, apperror.New(apperror.KindInvalidBody, "Invalid form data: nothing to update")
	}

	unlock, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var staged *StagedImage
	if image != nil {
		if staged, err = s.Images.StageImage(ctx, userID, image.Data, image.ContentType); err != nil {
			s.reportOrphan(ctx, userID, err)
			return nil, err
		}
	}
	if !patch.Empty() {
		if _, err := s.Users.Update(ctx, userID, patch); err != nil {
			if staged != nil {
				if aerr := s.Images.Abandon(ctx, staged); aerr != nil {
					helpers.LogError(s.Logger, "staged image not removed", aerr, logrus.Fields{"user_id": userID})
					s.reportOrphan(ctx, userID, aerr)
				}
			}
			return nil, err
		}
	}
	if staged != nil {
		if _, err := s.Images.Commit(ctx, staged); err != nil {
			s.reportOrphan(ctx, userID, err)
			return nil, err
		}
	}

	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.refreshSession(ctx, u)
	return u, nil
}

// DeleteProfileImage removes the user's profile image.
func (s *UserService) DeleteProfileImage(ctx context.Context, userID string) (*entity.User, error) {
	unlock, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.Images.DetachImage(ctx, userID); err != nil {
		s.reportOrphan(ctx, userID, err)
		return nil, err
	}
	return s.Users.GetByID(ctx, userID)
}

// bound caps a locked operation at OpTimeout so it ends before the lock expires.
func (s *UserService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.OpTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.OpTimeout)
}

func (s *UserService) lock(ctx context.Context, userID string) (func(), error) {
	if s.Locker == nil {
		return func() {}, nil
	}
	return s.Locker.Lock(ctx, userID)
}

// refreshSession keeps the cached profile fields in the session hash current.
func (s *UserService) refreshSession(ctx context.Context, u *entity.User) {
	if s.Redis == nil {
		return
	}
	key := helpers.SessionKey(u.ID)
	n, err := s.Redis.Exists(ctx, key).Result()
	if err != nil || n == 0 {
		return
	}
	if err := s.Redis.HSet(ctx, key, map[string]any{
		"login":      u.Login,
		"full_name":  u.FullName,
		"updated_at": nowRFC3339(),
	}).Err(); err != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("redis session update failed")
	}
}

// reportOrphan queues an operator notice for partial failures that left a remote object behind.
func (s *UserService) reportOrphan(ctx context.Context, userID string, err error) {
	var ae *apperror.Error
	if !errors.As(err, &ae) || ae.Kind != apperror.KindPartialFailure || ae.RemoteID == "" {
		return
	}
	s.notify(ctx, mailtpl.OrphanedAsset, mailtpl.NewOrphanedAssetData(
		s.AppName, s.NotifyTo, userID, ae.RemoteID, ae.AssetID, mailtpl.WithReason(ae.Error())))
}

func (s *UserService) notify(ctx context.Context, template string, data map[string]any) {
	if s.Jobs == nil || s.NotifyTo == "" {
		return
	}
	job := mailer.EmailJob{To: s.NotifyTo, Template: template, Data: data}
	if err := s.Jobs.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("template", template).Warn("publish email job failed")
	}
}
