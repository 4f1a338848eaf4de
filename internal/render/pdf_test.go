package render

import (
	"bytes"
	"testing"

	"receiptgen/backend/internal/domain"
	"receiptgen/backend/internal/layout"
	"receiptgen/backend/internal/profile"
)

// 1x1 PNG, the smallest payload the embedder accepts.
const tinyPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func TestPDFProducesDocument(t *testing.T) {
	doc := layout.Compose(profile.MustDefault(profile.RoyalTurban))

	out, err := PDF(doc)
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF: %q", out[:min(len(out), 8)])
	}
}

func TestPDFWithImages(t *testing.T) {
	inv := profile.MustDefault(profile.EscaladeRide)
	inv.LogoImage = tinyPNG
	inv.SignatureImage = tinyPNG

	out, err := PDF(layout.Compose(inv))
	if err != nil {
		t.Fatalf("PDF with images: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("empty output")
	}
}

func TestPDFDegradesOnBadImage(t *testing.T) {
	inv := profile.MustDefault(profile.RoyalTurban)
	inv.LogoImage = "data:image/png;base64,%%%not-base64%%%"

	out, err := PDF(layout.Compose(inv))
	if err != nil {
		t.Fatalf("a bad image must not fail the export: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF")
	}
}

func TestPDFEmptyInvoice(t *testing.T) {
	out, err := PDF(layout.Compose(domain.Invoice{}))
	if err != nil {
		t.Fatalf("PDF of zero invoice: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("empty output")
	}
}

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"png", tinyPNG, "PNG", false},
		{"jpeg", "data:image/jpeg;base64,AAAA", "JPG", false},
		{"gif", "data:image/gif;base64,AAAA", "GIF", false},
		{"svg rejected", "data:image/svg+xml;base64,AAAA", "", true},
		{"webp rejected", "data:image/webp;base64,AAAA", "", true},
		{"not a data url", "https://example.com/logo.png", "", true},
		{"not base64 encoded", "data:image/png,rawbytes", "", true},
		{"broken base64", "data:image/png;base64,!!!", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, imageType, err := decodeDataURL(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeDataURL: %v", err)
			}
			if imageType != tt.want {
				t.Fatalf("image type = %q, want %q", imageType, tt.want)
			}
		})
	}
}
