// Package service holds the editing sessions. Each company has at most one
// live draft; the in-memory session is authoritative while the backend runs,
// and the gateway is a best-effort durability layer behind it.
package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"receiptgen/backend/internal/domain"
	"receiptgen/backend/internal/hydrate"
	"receiptgen/backend/internal/layout"
	"receiptgen/backend/internal/profile"
	"receiptgen/backend/internal/render"
	"receiptgen/backend/internal/store"
	"receiptgen/backend/internal/xid"
)

// MaxImageBytes caps uploaded logo and signature images.
const MaxImageBytes = 2 << 20

var (
	ErrUnknownCompany  = errors.New("unknown company")
	ErrImageTooLarge   = fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	ErrUnsupportedType = errors.New("unsupported image type")
)

type Service struct {
	gateway store.Gateway

	mu       sync.RWMutex
	sessions map[string]domain.Invoice
}

func New(gateway store.Gateway) *Service {
	return &Service{
		gateway:  gateway,
		sessions: map[string]domain.Invoice{},
	}
}

// Open returns the company's current draft, loading and hydrating the
// persisted record on first access. A failing load degrades to the company
// default so the editor always opens.
func (s *Service) Open(ctx context.Context, companyID string) (domain.Invoice, error) {
	if !profile.Known(companyID) {
		return domain.Invoice{}, ErrUnknownCompany
	}

	s.mu.RLock()
	inv, ok := s.sessions[companyID]
	s.mu.RUnlock()
	if ok {
		return inv, nil
	}

	def := profile.MustDefault(companyID)
	raw, err := s.gateway.Load(ctx, companyID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("[service] WARN: failed to load draft company=%s: %v", companyID, err)
		raw = nil
	}
	inv = hydrate.Merge(raw, def)

	s.mu.Lock()
	// Another request may have opened the session while we hydrated.
	if existing, ok := s.sessions[companyID]; ok {
		inv = existing
	} else {
		s.sessions[companyID] = inv
	}
	s.mu.Unlock()

	return inv, nil
}

// Apply merges an edit request into the draft and persists the result.
func (s *Service) Apply(ctx context.Context, companyID string, edit domain.InvoiceEdit) (domain.Invoice, error) {
	return s.mutate(ctx, companyID, func(inv domain.Invoice) domain.Invoice {
		return domain.Apply(inv, edit)
	})
}

func (s *Service) AddItem(ctx context.Context, companyID string) (domain.Invoice, error) {
	return s.mutate(ctx, companyID, domain.AddItem)
}

func (s *Service) RemoveItem(ctx context.Context, companyID string, index int) (domain.Invoice, error) {
	return s.mutate(ctx, companyID, func(inv domain.Invoice) domain.Invoice {
		return domain.RemoveItem(inv, index)
	})
}

func (s *Service) UpdateItem(ctx context.Context, companyID string, index int, edit domain.ItemEdit) (domain.Invoice, error) {
	return s.mutate(ctx, companyID, func(inv domain.Invoice) domain.Invoice {
		return domain.UpdateItem(inv, index, edit)
	})
}

// Reset discards the draft and the persisted record, returning the company
// to its pristine default.
func (s *Service) Reset(ctx context.Context, companyID string) (domain.Invoice, error) {
	if !profile.Known(companyID) {
		return domain.Invoice{}, ErrUnknownCompany
	}

	if err := s.gateway.Delete(ctx, companyID); err != nil {
		log.Printf("[service] WARN: failed to delete draft company=%s: %v", companyID, err)
	}

	inv := profile.MustDefault(companyID)
	s.mu.Lock()
	s.sessions[companyID] = inv
	s.mu.Unlock()

	return inv, nil
}

// SetLogo validates and attaches an uploaded logo image.
func (s *Service) SetLogo(ctx context.Context, companyID string, image []byte) (domain.Invoice, error) {
	dataURL, err := encodeImage(image)
	if err != nil {
		return domain.Invoice{}, err
	}
	return s.mutate(ctx, companyID, func(inv domain.Invoice) domain.Invoice {
		next := inv.Clone()
		next.LogoImage = dataURL
		return next
	})
}

func (s *Service) RemoveLogo(ctx context.Context, companyID string) (domain.Invoice, error) {
	return s.mutate(ctx, companyID, func(inv domain.Invoice) domain.Invoice {
		next := inv.Clone()
		next.LogoImage = ""
		return next
	})
}

// SetSignature validates and attaches an uploaded signature image.
func (s *Service) SetSignature(ctx context.Context, companyID string, image []byte) (domain.Invoice, error) {
	dataURL, err := encodeImage(image)
	if err != nil {
		return domain.Invoice{}, err
	}
	return s.mutate(ctx, companyID, func(inv domain.Invoice) domain.Invoice {
		next := inv.Clone()
		next.SignatureImage = dataURL
		return next
	})
}

func (s *Service) RemoveSignature(ctx context.Context, companyID string) (domain.Invoice, error) {
	return s.mutate(ctx, companyID, func(inv domain.Invoice) domain.Invoice {
		next := inv.Clone()
		next.SignatureImage = ""
		return next
	})
}

// Export holds a rendered document ready for download.
type Export struct {
	FileName string
	PDF      []byte
}

// Export renders the company's current draft to PDF.
func (s *Service) Export(ctx context.Context, companyID string) (Export, error) {
	inv, err := s.Open(ctx, companyID)
	if err != nil {
		return Export{}, err
	}

	pdf, err := render.PDF(layout.Compose(inv))
	if err != nil {
		return Export{}, err
	}

	return Export{
		FileName: xid.New("invoice") + ".pdf",
		PDF:      pdf,
	}, nil
}

// mutate applies fn to the current draft under the write lock, then persists
// the result. Persistence is best effort: a failing save is logged and the
// updated draft is still returned, so the editor never blocks on storage.
func (s *Service) mutate(ctx context.Context, companyID string, fn func(domain.Invoice) domain.Invoice) (domain.Invoice, error) {
	inv, err := s.Open(ctx, companyID)
	if err != nil {
		return domain.Invoice{}, err
	}

	s.mu.Lock()
	inv = fn(s.sessions[companyID])
	s.sessions[companyID] = inv
	s.mu.Unlock()

	payload, err := json.Marshal(inv)
	if err != nil {
		log.Printf("[service] WARN: failed to encode draft company=%s: %v", companyID, err)
		return inv, nil
	}
	if err := s.gateway.Save(ctx, companyID, payload); err != nil {
		log.Printf("[service] WARN: failed to save draft company=%s: %v", companyID, err)
	}

	return inv, nil
}

// encodeImage validates an uploaded image and returns it as an inline data
// URL. Only raster formats the renderer can embed are accepted.
func encodeImage(image []byte) (string, error) {
	if len(image) == 0 {
		return "", ErrUnsupportedType
	}
	if len(image) > MaxImageBytes {
		return "", ErrImageTooLarge
	}

	var mime string
	switch http.DetectContentType(image) {
	case "image/png":
		mime = "image/png"
	case "image/jpeg":
		mime = "image/jpeg"
	case "image/gif":
		mime = "image/gif"
	default:
		return "", ErrUnsupportedType
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image), nil
}
