package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SundayYogurt/channel_service/internal/dto"
	"github.com/SundayYogurt/channel_service/internal/helper"
	"github.com/SundayYogurt/channel_service/internal/repository"
	"github.com/SundayYogurt/channel_service/internal/testutil"
	imageutil "github.com/SundayYogurt/channel_service/pkg/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUploader struct {
	mu      sync.Mutex
	uploads []string
	failOn  string
}

func (f *fakeUploader) UploadBytes(_ context.Context, folder, filename string, b []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if folder == f.failOn {
		return "", errors.New("media host unavailable")
	}
	if len(b) == 0 {
		return "", errors.New("empty upload")
	}
	f.uploads = append(f.uploads, folder+"/"+filename)
	return "https://res.example.com/" + folder + "/" + filename, nil
}

type fakeProducer struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeProducer) PublishMessage(key, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, string(key))
	return nil
}

func (f *fakeProducer) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

type fixture struct {
	db       *gorm.DB
	users    repository.UserRepository
	uploader *fakeUploader
	producer *fakeProducer
	auth     helper.Auth
	sessions SessionService
	profiles ProfileService
}

func newFixture(t *testing.T, opts SessionOptions) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	users := repository.NewUserRepository(db)
	uploader := &fakeUploader{}
	producer := &fakeProducer{}
	auth := helper.SetupAuth("access-secret", time.Minute, "refresh-secret", time.Hour)
	hasher := helper.NewBcryptHasher(bcrypt.MinCost)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		db:       db,
		users:    users,
		uploader: uploader,
		producer: producer,
		auth:     auth,
		sessions: NewSessionService(users, auth, hasher, producer, logger, opts),
		profiles: NewProfileService(
			users,
			repository.NewChannelRepository(db),
			repository.NewWatchHistoryRepository(db),
			hasher,
			uploader,
			producer,
			logger,
			ProfileOptions{Image: imageutil.ImageOptions{MaxWidth: 64, MaxPixels: 1024, Quality: 80}},
		),
	}
}

func (f *fixture) register(t *testing.T, username, email, password string) *dto.UserResponse {
	t.Helper()
	resp, err := f.profiles.Register(context.Background(), dto.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
		FullName: "Test " + username,
		Avatar:   pngUpload(t, "avatar.png"),
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return resp
}

func pngUpload(t *testing.T, name string) *dto.FileUpload {
	t.Helper()
	return sizedPNGUpload(t, name, 8, 8)
}

func sizedPNGUpload(t *testing.T, name string, w, h int) *dto.FileUpload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w && x < h; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return &dto.FileUpload{Filename: name, ContentType: "image/png", Bytes: buf.Bytes()}
}
