package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mockpanel/mockpanel/internal/models"
	pgrepo "github.com/mockpanel/mockpanel/internal/repositories/postgres"
	"github.com/mockpanel/mockpanel/internal/storage"
	"github.com/mockpanel/mockpanel/internal/utils"
)

const (
	maxDocumentBytes  = 10 << 20
	maxExtractedRunes = 20000
)

// DocumentView is a document row plus a short-lived download URL when a
// URL signer is configured.
type DocumentView struct {
	models.Document
	DownloadURL string `json:"download_url,omitempty"`
}

type DocumentService interface {
	Upload(ctx context.Context, userID, fileName, mimeType string, r io.Reader) (*models.Document, error)
	Get(ctx context.Context, userID, documentID string) (*DocumentView, error)
}

type documentService struct {
	repo     pgrepo.DocumentRepository
	uploader storage.Uploader
	signer   storage.Signer // optional
}

func NewDocumentService(repo pgrepo.DocumentRepository, uploader storage.Uploader, signer storage.Signer) DocumentService {
	return &documentService{repo: repo, uploader: uploader, signer: signer}
}

func (s *documentService) Upload(ctx context.Context, userID, fileName, mimeType string, r io.Reader) (*models.Document, error) {
	const op = "DocumentService.Upload"

	if userID == "" || fileName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and file_name are required", nil)
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeInternal, op, "uploader is not configured", nil)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes+1))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read file", err)
	}
	if len(data) > maxDocumentBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file exceeds the 10 MB limit", nil)
	}
	if len(data) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file is empty", nil)
	}

	id := uuid.NewString()
	objectName := "documents/" + userID + "/" + id + "/" + fileName

	storedPath, err := s.uploader.Upload(ctx, objectName, mimeType, bytes.NewReader(data))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload file", err)
	}

	row := &models.Document{
		ID:            id,
		UserID:        userID,
		FileName:      fileName,
		FilePath:      storedPath,
		FileSize:      len(data),
		MimeType:      mimeType,
		ExtractedText: extractText(mimeType, data),
		UploadedAt:    time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist document metadata", err)
	}
	return row, nil
}

func (s *documentService) Get(ctx context.Context, userID, documentID string) (*DocumentView, error) {
	const op = "DocumentService.Get"

	if userID == "" || documentID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and document_id are required", nil)
	}
	row, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "document not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get document", err)
	}
	if row.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "document belongs to another user", nil)
	}

	view := &DocumentView{Document: *row}
	if s.signer != nil {
		url, serr := s.signer.SignedGetURL(ctx, row.FilePath, 15*time.Minute)
		if serr == nil {
			view.DownloadURL = url
		}
	}
	return view, nil
}

// extractText pulls the question-seeding text out of plain-text uploads.
// PDF and word-processor formats are stored but not parsed here.
func extractText(mimeType string, data []byte) string {
	base := mimeType
	if i := strings.Index(base, ";"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(strings.ToLower(base))

	switch {
	case strings.HasPrefix(base, "text/"), base == "application/json":
	default:
		return ""
	}
	if !utf8.Valid(data) {
		return ""
	}

	text := strings.TrimSpace(string(data))
	if utf8.RuneCountInString(text) > maxExtractedRunes {
		runes := []rune(text)
		text = string(runes[:maxExtractedRunes])
	}
	return text
}
