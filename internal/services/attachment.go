package services

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/shoptrack/apiserver/internal/storage"
	"github.com/shoptrack/apiserver/types"
)

// AttachmentRepository defines persistence operations for attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment types.Attachment) (types.Attachment, error)
	ListByOrder(ctx context.Context, orderID int) ([]types.Attachment, error)
	GetByID(ctx context.Context, orderID, id int) (types.Attachment, error)
}

// AttachmentService stores attachment objects and their metadata rows.
// objects is nil when no storage backend is configured; the handlers are
// not mounted in that case.
type AttachmentService struct {
	repo    AttachmentRepository
	objects *storage.Storage
}

func NewAttachmentService(repo AttachmentRepository, objects *storage.Storage) *AttachmentService {
	return &AttachmentService{repo: repo, objects: objects}
}

// Enabled reports whether an object storage backend is configured.
func (s *AttachmentService) Enabled() bool {
	return s.objects != nil
}

// Upload stores the object first, then the metadata row. A failed row
// insert removes the orphaned object again, best effort.
func (s *AttachmentService) Upload(ctx context.Context, orderID int, filename, contentType string, r io.Reader, size int64) (types.Attachment, error) {
	key := fmt.Sprintf("ro/%d/%s%s", orderID, uuid.NewString(), path.Ext(filename))

	if err := s.objects.Put(ctx, key, r, size, contentType); err != nil {
		return types.Attachment{}, fmt.Errorf("store object failed: %w", err)
	}

	attachment, err := s.repo.Create(ctx, types.Attachment{
		RepairOrderID: orderID,
		Filename:      filename,
		ContentType:   contentType,
		Size:          size,
		ObjectKey:     key,
	})
	if err != nil {
		_ = s.objects.Delete(ctx, key)
		return types.Attachment{}, err
	}
	return attachment, nil
}

func (s *AttachmentService) List(ctx context.Context, orderID int) ([]types.Attachment, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

// Open returns the metadata and a reader over the object bytes. The
// caller closes the reader.
func (s *AttachmentService) Open(ctx context.Context, orderID, id int) (types.Attachment, io.ReadCloser, error) {
	attachment, err := s.repo.GetByID(ctx, orderID, id)
	if err != nil {
		return types.Attachment{}, nil, err
	}
	reader, err := s.objects.Get(ctx, attachment.ObjectKey)
	if err != nil {
		return types.Attachment{}, nil, fmt.Errorf("open object failed: %w", err)
	}
	return attachment, reader, nil
}
