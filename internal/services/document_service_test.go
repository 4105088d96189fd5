package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/mockpanel/mockpanel/internal/models"
	"github.com/mockpanel/mockpanel/internal/utils"
)

type memDocumentRepo struct {
	rows map[string]*models.Document
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{rows: map[string]*models.Document{}}
}

func (r *memDocumentRepo) Insert(_ context.Context, d *models.Document) error {
	cp := *d
	r.rows[d.ID] = &cp
	return nil
}

func (r *memDocumentRepo) GetByID(_ context.Context, id string) (*models.Document, error) {
	d, ok := r.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

type memUploader struct {
	objects map[string][]byte
}

func (u *memUploader) Upload(_ context.Context, objectName, _ string, r io.Reader) (string, error) {
	if u.objects == nil {
		u.objects = map[string][]byte{}
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.objects[objectName] = b
	return objectName, nil
}

func TestDocumentUploadExtractsPlainText(t *testing.T) {
	repo := newMemDocumentRepo()
	uploader := &memUploader{}
	svc := NewDocumentService(repo, uploader, nil)

	body := "Senior engineer with eight years of experience in distributed systems."
	doc, err := svc.Upload(context.Background(), "user-1", "resume.txt", "text/plain; charset=utf-8", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if doc.ExtractedText != body {
		t.Fatalf("extracted = %q, want %q", doc.ExtractedText, body)
	}
	if len(uploader.objects) != 1 {
		t.Fatalf("stored objects = %d, want 1", len(uploader.objects))
	}
	if doc.FileSize != len(body) {
		t.Fatalf("file size = %d, want %d", doc.FileSize, len(body))
	}
}

func TestDocumentUploadSkipsBinaryExtraction(t *testing.T) {
	svc := NewDocumentService(newMemDocumentRepo(), &memUploader{}, nil)

	pdf := append([]byte("%PDF-1.7\n"), 0x00, 0xff, 0xfe)
	doc, err := svc.Upload(context.Background(), "user-1", "resume.pdf", "application/pdf", bytes.NewReader(pdf))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.ExtractedText != "" {
		t.Fatalf("extracted = %q, want empty for pdf", doc.ExtractedText)
	}
}

func TestDocumentUploadRejectsEmptyFile(t *testing.T) {
	svc := NewDocumentService(newMemDocumentRepo(), &memUploader{}, nil)

	_, err := svc.Upload(context.Background(), "user-1", "empty.txt", "text/plain", strings.NewReader(""))
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}

func TestDocumentGetChecksOwnership(t *testing.T) {
	repo := newMemDocumentRepo()
	svc := NewDocumentService(repo, &memUploader{}, nil)

	doc, err := svc.Upload(context.Background(), "user-1", "notes.md", "text/markdown", strings.NewReader("# Notes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, err := svc.Get(context.Background(), "user-2", doc.ID); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}

	view, err := svc.Get(context.Background(), "user-1", doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.ExtractedText != "# Notes" {
		t.Fatalf("extracted = %q, want %q", view.ExtractedText, "# Notes")
	}
}

func TestExtractTextClipsLongInput(t *testing.T) {
	long := strings.Repeat("a", maxExtractedRunes+500)
	got := extractText("text/plain", []byte(long))
	if len(got) != maxExtractedRunes {
		t.Fatalf("clipped length = %d, want %d", len(got), maxExtractedRunes)
	}
}
