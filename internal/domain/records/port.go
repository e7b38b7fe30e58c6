package records

import "context"

// Repository port (persistence gateway)
type Repository interface {
	Create(ctx context.Context, r *Record) error
	Get(ctx context.Context, owner string, id RecordID) (*Record, error)
	FindByOwner(ctx context.Context, owner string) ([]*Record, error)
}

// ObjectStore port (external object storage)
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// URLSigner turns a durable stored URL into one a third party can fetch now.
type URLSigner interface {
	SignURL(ctx context.Context, storedURL string) (string, error)
}

// TextExtractor port (external OCR service)
type TextExtractor interface {
	Extract(ctx context.Context, fileName string, data []byte) (string, error)
}

// Payload is an uploaded file held in local temporary storage.
// Release must be safe to call more than once.
type Payload interface {
	Bytes() ([]byte, error)
	Size() int64
	Release() error
}
