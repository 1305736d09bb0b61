package services

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/SundayYogurt/channel_service/internal/dto"
	"github.com/SundayYogurt/channel_service/internal/helper"
	"github.com/SundayYogurt/channel_service/internal/helper/utils"
	"github.com/SundayYogurt/channel_service/internal/interfaces"
	"github.com/SundayYogurt/channel_service/internal/repository"
	imageutil "github.com/SundayYogurt/channel_service/pkg/utils"
)

const (
	avatarFolder = "avatars"
	coverFolder  = "covers"
)

var errEmptyURL = errors.New("media host returned an empty url")

type ProfileService interface {
	Register(ctx context.Context, input dto.RegisterRequest) (*dto.UserResponse, error)
	GetCurrentUser(ctx context.Context, userID uint) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uint, input dto.UpdateUserProfile) (*dto.UserResponse, error)
	UpdateAvatar(ctx context.Context, userID uint, file *dto.FileUpload) (*dto.UserResponse, error)
	UpdateCoverImage(ctx context.Context, userID uint, file *dto.FileUpload) (*dto.UserResponse, error)
	GetChannelProfile(ctx context.Context, username string, viewerID uint) (*dto.ChannelProfileResponse, error)
	GetWatchHistory(ctx context.Context, userID uint) ([]dto.WatchHistoryItem, error)
}

type ProfileOptions struct {
	Image         imageutil.ImageOptions
	UploadTimeout time.Duration
}

type profileService struct {
	repo        repository.UserRepository
	channelRepo repository.ChannelRepository
	historyRepo repository.WatchHistoryRepository
	hasher      helper.PasswordHasher
	uploader    interfaces.Uploader
	producer    interfaces.ProducerHandler
	log         *slog.Logger
	opts        ProfileOptions
}

func NewProfileService(
	repo repository.UserRepository,
	channelRepo repository.ChannelRepository,
	historyRepo repository.WatchHistoryRepository,
	hasher helper.PasswordHasher,
	uploader interfaces.Uploader,
	producer interfaces.ProducerHandler,
	logger *slog.Logger,
	opts ProfileOptions,
) ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = 20 * time.Second
	}
	return &profileService{
		repo:        repo,
		channelRepo: channelRepo,
		historyRepo: historyRepo,
		hasher:      hasher,
		uploader:    uploader,
		producer:    producer,
		log:         logger.With("service", "profile"),
		opts:        opts,
	}
}

func (p *profileService) Register(ctx context.Context, input dto.RegisterRequest) (*dto.UserResponse, error) {
	username := utils.NormalizeIdentity(input.Username)
	email := utils.NormalizeIdentity(input.Email)
	fullName := strings.TrimSpace(input.FullName)

	if utils.AnyBlank(username, email, fullName, input.Password) {
		return nil, domain.InvalidArgument("All fields are required")
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, domain.InvalidArgument("Invalid email format")
	}

	existing, err := p.repo.FindUserByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, domain.Internal("failed to look up user", err)
	}
	if existing != nil {
		return nil, domain.Conflict("User with email or username already exists")
	}

	if input.Avatar.Empty() {
		return nil, domain.InvalidArgument("Avatar image is required")
	}

	hashed, err := p.hasher.Hash(input.Password)
	if err != nil {
		return nil, domain.Internal("failed to hash password", err)
	}

	avatarURL, err := p.uploadImage(ctx, avatarFolder, input.Avatar)
	if err != nil {
		return nil, err
	}

	coverURL := ""
	if !input.CoverImage.Empty() {
		coverURL, err = p.uploadImage(ctx, coverFolder, input.CoverImage)
		if err != nil {
			return nil, err
		}
	}

	created, err := p.repo.CreateUser(ctx, &domain.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     avatarURL,
		CoverImage: coverURL,
		Password:   hashed,
	})
	if err != nil {
		// lost a race with a concurrent registration
		if helper.IsDuplicateKey(err) {
			return nil, domain.Conflict("User with email or username already exists")
		}
		return nil, domain.Internal("Something went wrong while registering user", err)
	}

	user, err := p.repo.FindUserById(ctx, created.ID)
	if err != nil || user == nil {
		return nil, domain.Internal("Something went wrong while registering user", err)
	}

	p.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	publishAccountEvent(p.producer, p.log, dto.EventUserRegistered, user)

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (p *profileService) GetCurrentUser(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	user, err := p.mustFindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (p *profileService) UpdateProfile(ctx context.Context, userID uint, input dto.UpdateUserProfile) (*dto.UserResponse, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := utils.NormalizeIdentity(input.Email)

	if utils.AnyBlank(fullName, email) {
		return nil, domain.InvalidArgument("All fields are required")
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, domain.InvalidArgument("Invalid email format")
	}

	if _, err := p.mustFindUser(ctx, userID); err != nil {
		return nil, err
	}

	other, err := p.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal("failed to look up user", err)
	}
	if other != nil && other.ID != userID {
		return nil, domain.Conflict("Email is already in use")
	}

	err = p.repo.UpdateUserFields(ctx, userID, map[string]interface{}{
		"full_name": fullName,
		"email":     email,
	})
	if err != nil {
		if helper.IsDuplicateKey(err) {
			return nil, domain.Conflict("Email is already in use")
		}
		return nil, domain.Internal("failed to update account details", err)
	}

	return p.GetCurrentUser(ctx, userID)
}

func (p *profileService) UpdateAvatar(ctx context.Context, userID uint, file *dto.FileUpload) (*dto.UserResponse, error) {
	if file.Empty() {
		return nil, domain.InvalidArgument("Avatar file is missing")
	}
	return p.replaceImage(ctx, userID, avatarFolder, "avatar", file)
}

func (p *profileService) UpdateCoverImage(ctx context.Context, userID uint, file *dto.FileUpload) (*dto.UserResponse, error) {
	if file.Empty() {
		return nil, domain.InvalidArgument("Cover image file is missing")
	}
	return p.replaceImage(ctx, userID, coverFolder, "cover_image", file)
}

func (p *profileService) GetChannelProfile(ctx context.Context, username string, viewerID uint) (*dto.ChannelProfileResponse, error) {
	username = utils.NormalizeIdentity(username)
	if username == "" {
		return nil, domain.InvalidArgument("username is missing")
	}

	profile, err := p.channelRepo.GetChannelProfile(ctx, username, viewerID)
	if err != nil {
		return nil, domain.Internal("failed to load channel", err)
	}
	if profile == nil {
		return nil, domain.NotFound("channel does not exist")
	}
	return profile, nil
}

func (p *profileService) GetWatchHistory(ctx context.Context, userID uint) ([]dto.WatchHistoryItem, error) {
	if _, err := p.mustFindUser(ctx, userID); err != nil {
		return nil, err
	}

	items, err := p.historyRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, domain.Internal("failed to load watch history", err)
	}
	if items == nil {
		items = []dto.WatchHistoryItem{}
	}
	return items, nil
}

func (p *profileService) replaceImage(ctx context.Context, userID uint, folder, column string, file *dto.FileUpload) (*dto.UserResponse, error) {
	if _, err := p.mustFindUser(ctx, userID); err != nil {
		return nil, err
	}

	url, err := p.uploadImage(ctx, folder, file)
	if err != nil {
		return nil, err
	}

	if err := p.repo.UpdateUserFields(ctx, userID, map[string]interface{}{column: url}); err != nil {
		return nil, domain.Internal("failed to update "+column, err)
	}

	return p.GetCurrentUser(ctx, userID)
}

// uploadImage normalizes the file to JPEG and hands it to the media host.
func (p *profileService) uploadImage(ctx context.Context, folder string, file *dto.FileUpload) (string, error) {
	normalized, err := imageutil.NormalizeToJPG(file.Bytes, p.opts.Image)
	if err != nil {
		return "", domain.WrapError(domain.KindInvalidArgument, "Unsupported image file", err)
	}

	name := strings.TrimSuffix(file.Filename, path.Ext(file.Filename)) + ".jpg"

	upCtx, cancel := context.WithTimeout(ctx, p.opts.UploadTimeout)
	defer cancel()

	url, err := p.uploader.UploadBytes(upCtx, folder, name, normalized)
	if err == nil && strings.TrimSpace(url) == "" {
		err = errEmptyURL
	}
	if err != nil {
		p.log.Error("image upload failed", "folder", folder, "error", err)
		return "", domain.WrapError(domain.KindUploadFailed, "Error while uploading "+strings.TrimSuffix(folder, "s"), err)
	}
	return url, nil
}

func (p *profileService) mustFindUser(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := p.repo.FindUserById(ctx, userID)
	if err != nil {
		return nil, domain.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, domain.NotFound("user not found")
	}
	return user, nil
}
