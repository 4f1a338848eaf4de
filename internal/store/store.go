package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Key is the storage key for a company's invoice draft. The prefix matches
// the records written by earlier deployments of the generator, so existing
// drafts remain readable.
func Key(companyID string) string {
	return "invoice_data_" + companyID
}

// Gateway persists one invoice draft per company, as an opaque JSON payload.
// Load returns ErrNotFound when no draft has been saved for the company.
type Gateway interface {
	Load(ctx context.Context, companyID string) ([]byte, error)
	Save(ctx context.Context, companyID string, payload []byte) error
	Delete(ctx context.Context, companyID string) error
}
