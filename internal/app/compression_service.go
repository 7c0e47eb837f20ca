package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"scholarforge/internal/compress"
	"scholarforge/internal/model"
	"scholarforge/internal/storage"
)

var (
	ErrFileNotFound  = errors.New("file not found")
	ErrFileTooLarge  = errors.New("file too large")
	ErrFileNotReady  = errors.New("file is still processing")
	ErrNotAnImage    = errors.New("file is not a supported image")
	ErrInvalidTarget = errors.New("target size must be positive")
)

type ImageCompressor interface {
	Compress(ctx context.Context, src []byte, target int64) (*compress.Result, error)
}

type CompressionService struct {
	files      FileStore
	store      storage.Storage
	compressor ImageCompressor
	publisher  CompressJobPublisher
	maxUpload  int64
	timeout    time.Duration
	logger     *zap.Logger
}

type CompressInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Data        []byte
	Target      int64
	// Async queues the job when a publisher is configured.
	Async bool
}

func NewCompressionService(
	files FileStore,
	store storage.Storage,
	compressor ImageCompressor,
	publisher CompressJobPublisher,
	maxUpload int64,
	timeout time.Duration,
	logger *zap.Logger,
) *CompressionService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CompressionService{
		files:      files,
		store:      store,
		compressor: compressor,
		publisher:  publisher,
		maxUpload:  maxUpload,
		timeout:    timeout,
		logger:     logger,
	}
}

func (s *CompressionService) Submit(ctx context.Context, input CompressInput) (*model.CompressedFile, error) {
	if input.UserID == 0 || len(input.Data) == 0 {
		return nil, ErrInvalidInput
	}
	if input.Target <= 0 {
		return nil, ErrInvalidTarget
	}
	if s.maxUpload > 0 && int64(len(input.Data)) > s.maxUpload {
		return nil, fmt.Errorf("%w: %s exceeds %s", ErrFileTooLarge,
			humanize.IBytes(uint64(len(input.Data))), humanize.IBytes(uint64(s.maxUpload)))
	}

	mime := input.ContentType
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(input.Data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, ErrNotAnImage
	}

	name := path.Base(strings.TrimSpace(input.Filename))
	if name == "." || name == "/" || name == "" {
		name = "image"
	}

	key := storage.NewKey("originals", input.UserID, name)
	if err := s.store.Put(ctx, key, mime, bytes.NewReader(input.Data)); err != nil {
		return nil, err
	}

	file := &model.CompressedFile{
		UserID:       input.UserID,
		OriginalName: name,
		OriginalMIME: mime,
		OriginalSize: int64(len(input.Data)),
		OriginalKey:  key,
		TargetSize:   input.Target,
		Status:       model.FileProcessing,
	}
	if err := s.files.Create(file); err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, err
	}

	if input.Async && s.publisher != nil {
		job := model.CompressJob{JobID: uuid.NewString(), FileID: file.ID}
		err := s.publisher.PublishCompressJob(ctx, job)
		if err == nil {
			s.logger.Info("compress job queued", zap.String("job_id", job.JobID), zap.Uint("file_id", file.ID))
			return file, nil
		}
		s.logger.Warn("compress job publish failed, processing inline", zap.Error(err))
	}

	if err := s.process(ctx, file, input.Data); err != nil {
		s.logger.Warn("image compression rejected", zap.Uint("file_id", file.ID), zap.Error(err))
		s.deleteObjects(context.WithoutCancel(ctx), file)
		if derr := s.files.DeleteByIDAndUserID(file.ID, file.UserID); derr != nil {
			s.logger.Warn("drop rejected file record failed", zap.Uint("file_id", file.ID), zap.Error(derr))
		}
		return nil, compressError(err)
	}
	return file, nil
}

// Process runs a queued job. Compression failures are recorded on the file
// and are not returned. When ctx ends first the file stays PROCESSING and
// the returned error matches context.Canceled or context.DeadlineExceeded,
// so the job can be redelivered.
func (s *CompressionService) Process(ctx context.Context, fileID uint) error {
	file, err := s.files.GetByID(fileID)
	if err != nil {
		return err
	}
	if file == nil {
		return ErrFileNotFound
	}
	if file.Status != model.FileProcessing {
		return nil
	}

	rc, err := s.store.Get(ctx, file.OriginalKey)
	if err != nil {
		return s.markFailed(file, err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return fmt.Errorf("read original failed: %w", err)
	}
	if err := s.process(ctx, file, data); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("compress job interrupted: %w", ctx.Err())
		}
		return s.markFailed(file, err)
	}
	return nil
}

// process compresses data and stores the result. It never records failures.
func (s *CompressionService) process(ctx context.Context, file *model.CompressedFile, data []byte) error {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	res, err := s.compressor.Compress(cctx, data, file.TargetSize)
	if err != nil {
		return err
	}

	resultKey := storage.NewKey("compressed", file.UserID, ResultName(file.OriginalName, res.MIMEType))
	if err := s.store.Put(ctx, resultKey, res.MIMEType, bytes.NewReader(res.Data)); err != nil {
		return fmt.Errorf("store result failed: %w", err)
	}

	file.ResultKey = resultKey
	file.ResultMIME = res.MIMEType
	file.ResultSize = res.Size()
	file.Width = res.Width
	file.Height = res.Height
	file.Quality = res.Quality
	file.Fit = res.Fit
	file.Status = model.FileDone
	file.Error = ""
	if err := s.files.Save(file); err != nil {
		file.Status = model.FileProcessing
		return err
	}

	s.logger.Info("image compressed",
		zap.Uint("file_id", file.ID),
		zap.String("from", humanize.Bytes(uint64(file.OriginalSize))),
		zap.String("to", humanize.Bytes(uint64(file.ResultSize))),
		zap.String("target", humanize.Bytes(uint64(file.TargetSize))),
		zap.Int("iterations", res.Iterations),
		zap.Bool("fit", res.Fit),
		zap.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (s *CompressionService) markFailed(file *model.CompressedFile, cause error) error {
	s.logger.Warn("image compression failed", zap.Uint("file_id", file.ID), zap.Error(cause))
	file.Status = model.FileError
	file.Error = truncate(cause.Error(), 500)
	return s.files.Save(file)
}

// compressError maps compressor failures onto the service's sentinels.
func compressError(err error) error {
	switch {
	case errors.Is(err, compress.ErrDecode):
		return fmt.Errorf("%w: %v", ErrNotAnImage, err)
	case errors.Is(err, compress.ErrTooLarge):
		return fmt.Errorf("%w: %v", ErrFileTooLarge, err)
	default:
		return err
	}
}

func (s *CompressionService) List(userID uint, limit int) ([]model.CompressedFile, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.files.ListByUserID(userID, limit)
}

func (s *CompressionService) Get(userID, fileID uint) (*model.CompressedFile, error) {
	if userID == 0 || fileID == 0 {
		return nil, ErrInvalidInput
	}
	file, err := s.files.GetByIDAndUserID(fileID, userID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrFileNotFound
	}
	return file, nil
}

// Open streams the compressed output. The caller closes the reader.
func (s *CompressionService) Open(ctx context.Context, userID, fileID uint) (*model.CompressedFile, io.ReadCloser, error) {
	file, err := s.Get(userID, fileID)
	if err != nil {
		return nil, nil, err
	}
	if file.Status != model.FileDone {
		return nil, nil, ErrFileNotReady
	}
	rc, err := s.store.Get(ctx, file.ResultKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, err
	}
	return file, rc, nil
}

func (s *CompressionService) Delete(ctx context.Context, userID, fileID uint) error {
	file, err := s.Get(userID, fileID)
	if err != nil {
		return err
	}
	s.deleteObjects(ctx, file)
	return s.files.DeleteByIDAndUserID(fileID, userID)
}

func (s *CompressionService) PurgeUser(ctx context.Context, userID uint) error {
	files, err := s.files.ListAllByUserID(userID)
	if err != nil {
		return err
	}
	for i := range files {
		s.deleteObjects(ctx, &files[i])
	}
	return s.files.DeleteByUserID(userID)
}

func (s *CompressionService) deleteObjects(ctx context.Context, file *model.CompressedFile) {
	for _, key := range []string{file.OriginalKey, file.ResultKey} {
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			s.logger.Warn("delete stored object failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// ResultName swaps the extension to match the output encoding.
func ResultName(original, mime string) string {
	base := strings.TrimSuffix(original, path.Ext(original))
	if base == "" {
		base = "image"
	}
	if mime == compress.MIMEWEBP {
		return base + ".webp"
	}
	return base + ".jpg"
}
