package service

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"notebridge/internal/model"
	"notebridge/pkg/apierror"
)

type FileMetaStore interface {
	Create(ctx context.Context, f model.FileMetaData) (model.FileMetaData, error)
	FindByUniqueID(ctx context.Context, uniqueID string) (model.FileMetaData, error)
}

// FileService stores uploaded pictures on disk, records their metadata and
// keeps the owning user's or lesson's image URL in sync.
type FileService struct {
	uploadRoot    string
	thumbnailRoot string
	thumbnailSize int
	publicBaseURL string
	allowedMIME   []string
	files         FileMetaStore
	users         UserStore
	lessons       LessonStore
}

func NewFileService(uploadRoot, thumbnailRoot string, thumbnailSize int, publicBaseURL string, allowedMIME []string, files FileMetaStore, users UserStore, lessons LessonStore) (*FileService, error) {
	if err := os.MkdirAll(uploadRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	if err := os.MkdirAll(thumbnailRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create thumbnail root: %w", err)
	}

	return &FileService{
		uploadRoot:    uploadRoot,
		thumbnailRoot: thumbnailRoot,
		thumbnailSize: thumbnailSize,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		allowedMIME:   allowedMIME,
		files:         files,
		users:         users,
		lessons:       lessons,
	}, nil
}

// UploadProfilePic stores the image and points the user's profileUrl at it.
func (s *FileService) UploadProfilePic(ctx context.Context, userID int64, filename string, reader io.Reader) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	fileURL, err := s.storeImage(ctx, filename, reader, userID, 0)
	if err != nil {
		return "", err
	}

	user.ProfileURL = fileURL
	if err := s.users.Update(ctx, user); err != nil {
		return "", err
	}
	return fileURL, nil
}

// UploadLessonPic stores the image and points the lesson's imageUrl at it.
// Only the owning teacher may replace a lesson picture; actorID zero skips
// the check for admin paths.
func (s *FileService) UploadLessonPic(ctx context.Context, lessonID, actorID int64, filename string, reader io.Reader) (string, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		return "", err
	}
	if actorID != 0 && lesson.TeacherID != actorID {
		return "", apierror.New("FORBIDDEN", "lesson belongs to another teacher", "", http.StatusForbidden)
	}

	fileURL, err := s.storeImage(ctx, filename, reader, lesson.TeacherID, lessonID)
	if err != nil {
		return "", err
	}

	lesson.ImageURL = fileURL
	if err := s.lessons.Update(ctx, lesson); err != nil {
		return "", err
	}
	return fileURL, nil
}

// Open returns the stored file and its MIME type for serving.
func (s *FileService) Open(ctx context.Context, uniqueID string) (*os.File, string, error) {
	meta, err := s.files.FindByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, "", err
	}

	file, err := os.Open(filepath.Join(s.uploadRoot, meta.UniqueID))
	if err != nil {
		return nil, "", model.ErrFileNotFound
	}

	mimeType, err := detectMIME(file)
	if err != nil {
		_ = file.Close()
		return nil, "", err
	}
	return file, mimeType, nil
}

// OpenThumbnail returns the stored thumbnail for an uploaded image.
func (s *FileService) OpenThumbnail(ctx context.Context, uniqueID string) (*os.File, error) {
	if _, err := s.files.FindByUniqueID(ctx, uniqueID); err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.thumbnailRoot, uniqueID+".jpg"))
	if err != nil {
		return nil, model.ErrFileNotFound
	}
	return file, nil
}

func (s *FileService) storeImage(ctx context.Context, filename string, reader io.Reader, userID, lessonID int64) (string, error) {
	uniqueID := uuid.NewString()
	path := filepath.Join(s.uploadRoot, uniqueID)

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	_, copyErr := io.Copy(out, reader)
	closeErr := out.Close()
	if copyErr != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close upload: %w", closeErr)
	}

	stored, err := os.Open(path)
	if err != nil {
		return "", err
	}
	mimeType, err := detectMIME(stored)
	if err != nil {
		_ = stored.Close()
		_ = os.Remove(path)
		return "", err
	}

	if !s.isAllowedMIME(mimeType) {
		_ = stored.Close()
		_ = os.Remove(path)
		return "", apierror.New("UNSUPPORTED_TYPE", "file type is not allowed", mimeType, http.StatusUnsupportedMediaType)
	}

	thumbErr := s.generateThumbnail(stored, filepath.Join(s.thumbnailRoot, uniqueID+".jpg"))
	_ = stored.Close()
	if thumbErr != nil {
		_ = os.Remove(path)
		return "", thumbErr
	}

	meta := model.FileMetaData{
		UniqueID:   uniqueID,
		ObjectName: filepath.Base(filename),
		UploadDate: time.Now().UTC(),
		UserID:     userID,
		LessonID:   lessonID,
	}
	if _, err := s.files.Create(ctx, meta); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	return s.publicBaseURL + "/file/" + uniqueID, nil
}

func (s *FileService) generateThumbnail(file *os.File, thumbPath string) error {
	if _, err := file.Seek(0, 0); err != nil {
		return err
	}

	src, _, err := image.Decode(file)
	if err != nil {
		return apierror.New("UNSUPPORTED_TYPE", "cannot decode image", err.Error(), http.StatusUnsupportedMediaType)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return apierror.New("UNSUPPORTED_TYPE", "invalid image dimensions", "", http.StatusUnsupportedMediaType)
	}

	maxDim := width
	if height > maxDim {
		maxDim = height
	}

	scale := float64(s.thumbnailSize) / float64(maxDim)
	if scale > 1 {
		scale = 1
	}

	targetWidth := int(math.Round(float64(width) * scale))
	targetHeight := int(math.Round(float64(height) * scale))
	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	out, err := os.OpenFile(thumbPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	encodeErr := jpeg.Encode(out, dst, &jpeg.Options{Quality: 95})
	closeErr := out.Close()
	if encodeErr != nil {
		return encodeErr
	}
	return closeErr
}

func (s *FileService) isAllowedMIME(mimeType string) bool {
	if len(s.allowedMIME) == 0 {
		return strings.HasPrefix(strings.ToLower(mimeType), "image/")
	}

	cleaned := strings.ToLower(strings.TrimSpace(mimeType))
	for _, allowed := range s.allowedMIME {
		if cleaned == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

func detectMIME(file *os.File) (string, error) {
	if _, err := file.Seek(0, 0); err != nil {
		return "", err
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	if _, err := file.Seek(0, 0); err != nil {
		return "", err
	}

	return http.DetectContentType(buffer[:n]), nil
}
