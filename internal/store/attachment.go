package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shoptrack/apiserver/types"
)

// AttachmentRepository handles persistence for attachment metadata.
// The object bytes themselves live in object storage.
type AttachmentRepository struct {
	db *sql.DB
}

func NewAttachmentRepository(db *sql.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, attachment types.Attachment) (types.Attachment, error) {
	attachment.CreatedAt = time.Now()

	const query = `
		INSERT INTO attachments (repair_order_id, filename, content_type, size, object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		attachment.RepairOrderID,
		attachment.Filename,
		attachment.ContentType,
		attachment.Size,
		attachment.ObjectKey,
		attachment.CreatedAt,
	).Scan(&attachment.ID); err != nil {
		return types.Attachment{}, err
	}
	return attachment, nil
}

func (r *AttachmentRepository) ListByOrder(ctx context.Context, orderID int) ([]types.Attachment, error) {
	const query = `
		SELECT id, repair_order_id, filename, content_type, size, object_key, created_at
		FROM attachments
		WHERE repair_order_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := make([]types.Attachment, 0)
	for rows.Next() {
		var attachment types.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.RepairOrderID,
			&attachment.Filename,
			&attachment.ContentType,
			&attachment.Size,
			&attachment.ObjectKey,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		attachments = append(attachments, attachment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *AttachmentRepository) GetByID(ctx context.Context, orderID, id int) (types.Attachment, error) {
	const query = `
		SELECT id, repair_order_id, filename, content_type, size, object_key, created_at
		FROM attachments
		WHERE id = $1 AND repair_order_id = $2`
	var attachment types.Attachment
	err := r.db.QueryRowContext(ctx, query, id, orderID).Scan(
		&attachment.ID,
		&attachment.RepairOrderID,
		&attachment.Filename,
		&attachment.ContentType,
		&attachment.Size,
		&attachment.ObjectKey,
		&attachment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Attachment{}, ErrNotFound
		}
		return types.Attachment{}, err
	}
	return attachment, nil
}
