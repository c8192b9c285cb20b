package types

import "time"

// RepairOrder is one job on the shop board. Orders are created once and
// only their status changes afterwards; nothing deletes them.
type RepairOrder struct {
	// ID is the server-assigned, monotonically increasing identifier.
	ID int `json:"id" db:"id"`

	// RO is the shop's own repair-order number, free text.
	RO string `json:"ro" db:"ro"`

	// Customer is the customer's name.
	Customer string `json:"customer" db:"customer"`

	// Vehicle describes the vehicle being worked on.
	Vehicle string `json:"vehicle" db:"vehicle"`

	// Advisor is the service advisor handling the order.
	Advisor string `json:"advisor" db:"advisor"`

	// Tech is the technician assigned to the order.
	Tech string `json:"tech" db:"tech"`

	// Status is the current state of the order, free text
	// (e.g., "waiting parts", "in progress", "done").
	Status string `json:"status" db:"status"`

	// CreatedAt is the timestamp when the order was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent status change.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Attachment is a photo or document stored against a repair order.
// The object itself lives in object storage; this row is the metadata.
type Attachment struct {
	// ID is the unique identifier of the attachment.
	ID int `json:"id" db:"id"`

	// RepairOrderID is the order this attachment belongs to.
	RepairOrderID int `json:"repair_order_id" db:"repair_order_id"`

	// Filename is the original client-supplied file name.
	Filename string `json:"filename" db:"filename"`

	// ContentType is the MIME type reported at upload time.
	ContentType string `json:"content_type" db:"content_type"`

	// Size is the object size in bytes.
	Size int64 `json:"size" db:"size"`

	// ObjectKey is the key of the object in the storage bucket.
	ObjectKey string `json:"-" db:"object_key"`

	// CreatedAt is the timestamp when the attachment was uploaded.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
