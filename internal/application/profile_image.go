package application

import (
	"bytes"
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	repo "github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/apperror"
	"github.com/oksasatya/go-library-api/pkg/helpers"
	"github.com/oksasatya/go-library-api/pkg/validation"
)

// AllowedImageKinds are the image subtypes accepted for profile pictures.
var AllowedImageKinds = []string{"jpeg", "png"}

// ProfileImageManager keeps users.image_id, the assets table and the remote
// object store consistent. No step is rolled back across stores: every
// operation writes the new state before it removes the old one, so a user
// never points at a missing asset. Callers serialise calls per user.
type ProfileImageManager struct {
	Users  repo.UserRepository
	Assets repo.AssetRepository
	Remote repo.RemoteAssetStore
	Logger *logrus.Logger
	Folder string

	newID func() string
}

func NewProfileImageManager(users repo.UserRepository, assets repo.AssetRepository, remote repo.RemoteAssetStore, logger *logrus.Logger, folder string) *ProfileImageManager {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &ProfileImageManager{
		Users:  users,
		Assets: assets,
		Remote: remote,
		Logger: logger,
		Folder: folder,
		newID:  uuid.NewString,
	}
}

// StagedImage is an uploaded and recorded asset not yet linked to its user.
type StagedImage struct {
	Asset *entity.Asset

	userID string
	old    *entity.Asset
}

// AttachNewImage uploads an image and links it to a user without one.
// A user who already has an image gets ReplaceImage semantics.
func (m *ProfileImageManager) AttachNewImage(ctx context.Context, userID string, data []byte, contentType string) (*entity.Asset, error) {
	s, err := m.StageImage(ctx, userID, data, contentType)
	if err != nil {
		return nil, err
	}
	return m.Commit(ctx, s)
}

// ReplaceImage stores the new image and repoints the user before the old
// asset is removed. A failed remote delete of the old object is logged only.
func (m *ProfileImageManager) ReplaceImage(ctx context.Context, userID string, data []byte, contentType string) (*entity.Asset, error) {
	return m.AttachNewImage(ctx, userID, data, contentType)
}

// StageImage uploads the image and records its asset row without touching
// the user. The result must be passed to Commit or Abandon.
func (m *ProfileImageManager) StageImage(ctx context.Context, userID string, data []byte, contentType string) (*StagedImage, error) {
	if err := checkImage(data, contentType); err != nil {
		return nil, err
	}
	u, err := m.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s := &StagedImage{userID: u.ID}
	if u.HasImage() {
		if s.old, err = m.currentAsset(ctx, u); err != nil {
			return nil, err
		}
	}
	if s.Asset, err = m.store(ctx, data, contentType); err != nil {
		return nil, err
	}
	return s, nil
}

// Commit links the staged asset to its user and discards the one it replaces.
func (m *ProfileImageManager) Commit(ctx context.Context, s *StagedImage) (*entity.Asset, error) {
	if err := m.link(ctx, s.userID, s.Asset); err != nil {
		return nil, err
	}
	if s.old != nil {
		if err := m.discard(ctx, s.userID, s.old); err != nil {
			return nil, err
		}
	}
	return s.Asset, nil
}

// Abandon removes a staged asset that will not be linked.
func (m *ProfileImageManager) Abandon(ctx context.Context, s *StagedImage) error {
	return m.discard(ctx, s.userID, s.Asset)
}

// DetachImage unlinks the user's image, then deletes the asset row and the
// remote object in that order.
func (m *ProfileImageManager) DetachImage(ctx context.Context, userID string) error {
	u, err := m.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.HasImage() {
		return apperror.New(apperror.KindNoImageSet, "user has no profile image")
	}
	old, err := m.currentAsset(ctx, u)
	if err != nil {
		return err
	}

	if err := m.Users.SetImage(ctx, u.ID, nil); err != nil {
		return err
	}
	return m.discard(ctx, u.ID, old)
}

func checkImage(data []byte, contentType string) error {
	if err := validation.ValidateFileExtension(contentType, AllowedImageKinds); err != nil {
		return err
	}
	if len(data) == 0 {
		return apperror.New(apperror.KindInvalidBody, "image file is empty")
	}
	return nil
}

// store uploads the bytes under a fresh name and records the asset row.
func (m *ProfileImageManager) store(ctx context.Context, data []byte, contentType string) (*entity.Asset, error) {
	res, err := m.Remote.Upload(ctx, bytes.NewReader(data), repo.UploadOptions{
		ID:          m.newID(),
		Folder:      m.Folder,
		ContentType: contentType,
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUploadFailed, "image upload failed", err)
	}

	a := entity.AssetFromUpload(res)
	a.ID = m.newID()
	if err := m.Assets.Create(ctx, a); err != nil {
		helpers.LogError(m.Logger, "asset record not saved, remote object orphaned", err, logrus.Fields{
			"remote_id": res.RemoteID,
		})
		return nil, apperror.Orphan("image uploaded but its record could not be saved", res.RemoteID, "", err)
	}
	return a, nil
}

func (m *ProfileImageManager) link(ctx context.Context, userID string, a *entity.Asset) error {
	id := a.ID
	if err := m.Users.SetImage(ctx, userID, &id); err != nil {
		helpers.LogError(m.Logger, "asset not linked to user, asset orphaned", err, logrus.Fields{
			"remote_id": a.RemoteID,
			"asset_id":  a.ID,
			"user_id":   userID,
		})
		return apperror.Orphan("image stored but could not be linked to the user", a.RemoteID, a.ID, err)
	}
	return nil
}

// currentAsset loads the linked asset and rejects rows that cannot be cleaned up.
func (m *ProfileImageManager) currentAsset(ctx context.Context, u *entity.User) (*entity.Asset, error) {
	a := u.Image
	if a == nil {
		var err error
		a, err = m.Assets.GetByID(ctx, *u.ImageID)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				return nil, apperror.Newf(apperror.KindInconsistentAssetRecord, "user %s links missing asset %s", u.ID, *u.ImageID)
			}
			return nil, err
		}
	}
	if a.RemoteID == "" {
		return nil, &apperror.Error{
			Kind:    apperror.KindInconsistentAssetRecord,
			Message: "asset " + a.ID + " has no remote id",
			AssetID: a.ID,
		}
	}
	return a, nil
}

// discard deletes an unlinked asset row, then its remote object.
func (m *ProfileImageManager) discard(ctx context.Context, userID string, a *entity.Asset) error {
	if err := m.Assets.Delete(ctx, a.ID); err != nil {
		return apperror.Orphan("unlinked image record could not be deleted", a.RemoteID, a.ID, err)
	}
	if err := m.Remote.Delete(ctx, a.RemoteID); err != nil {
		helpers.LogWarn(m.Logger, "remote image delete failed, object orphaned", err, logrus.Fields{
			"remote_id": a.RemoteID,
			"asset_id":  a.ID,
			"user_id":   userID,
		})
	}
	return nil
}
