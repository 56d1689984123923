package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skuldata/skuldata-api/internal/audit"
	"github.com/skuldata/skuldata-api/internal/dto"
	"github.com/skuldata/skuldata-api/internal/models"
	"github.com/skuldata/skuldata-api/internal/repository"
)

func newDocumentService(db *gorm.DB, uploader FileUploader, recorder *audit.Recorder) DocumentService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewDocumentService(repository.NewDocumentRepository(db), db, uploader, recorder, validate, testLogger())
}

func multipartHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(int64(buf.Len()) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

type stubUploader struct {
	name string
	url  string
}

func (u *stubUploader) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	u.name = name
	return u.url, nil
}

func TestDocumentUploadWithoutRemoteStorage(t *testing.T) {
	db, store := setupAuditedDB(t)
	actor := seedServiceUser(t, db, "grace@example.com", "correct horse", "admin")
	svc := newDocumentService(db, nil, newAuditedRecorder(t, store))

	content := []byte("%PDF-1.4 term report")
	resp, err := svc.Upload(context.Background(), actor, multipartHeader(t, "report.pdf", content), "", "end of term report", models.DocumentCategoryReport, false)
	require.NoError(t, err)
	require.NotZero(t, resp.ID)
	require.Equal(t, "report.pdf", resp.Title)
	require.Equal(t, "application/pdf", resp.FileType)
	require.Equal(t, int64(len(content)), resp.FileSize)
	require.Empty(t, resp.FileURL)

	uploads := store.byCategory(models.CategoryUpload)
	require.Len(t, uploads, 1)
	require.Equal(t, "Uploaded document: report.pdf", uploads[0].Action)
	require.Equal(t, actor.Tag, uploads[0].ActorTag)
	require.Equal(t, "application/pdf", uploads[0].Metadata["file_type"])

	created := store.byCategory(models.CategoryCreate)
	require.Len(t, created, 1)
}

func TestDocumentUploadStoresThroughUploader(t *testing.T) {
	db, store := setupAuditedDB(t)
	actor := seedServiceUser(t, db, "grace@example.com", "correct horse", "admin")
	uploader := &stubUploader{url: "https://cdn.example.com/report.pdf"}
	svc := newDocumentService(db, uploader, newAuditedRecorder(t, store))

	resp, err := svc.Upload(context.Background(), actor, multipartHeader(t, "report.pdf", []byte("%PDF-1.4")), "Term Report", "", "", true)
	require.NoError(t, err)
	require.Equal(t, "Term Report", resp.Title)
	require.Equal(t, models.DocumentCategoryGeneral, resp.Category)
	require.Equal(t, "https://cdn.example.com/report.pdf", resp.FileURL)
	require.Equal(t, "report.pdf", uploader.name)
}

func TestDocumentDownloadRecordsEntry(t *testing.T) {
	db, store := setupAuditedDB(t)
	actor := seedServiceUser(t, db, "grace@example.com", "correct horse", "teacher")
	svc := newDocumentService(db, nil, newAuditedRecorder(t, store))

	uploaded, err := svc.Upload(context.Background(), actor, multipartHeader(t, "report.pdf", []byte("%PDF-1.4")), "", "", "", false)
	require.NoError(t, err)

	_, err = svc.Download(context.Background(), actor, uploaded.ID)
	require.NoError(t, err)

	entries := store.byCategory(models.CategoryDownload)
	require.Len(t, entries, 1)
	require.Equal(t, "Downloaded document: report.pdf", entries[0].Action)
	require.NotNil(t, entries[0].TargetID)
	require.Equal(t, uploaded.ID, *entries[0].TargetID)
}

func TestDocumentShareRecordsRecipient(t *testing.T) {
	db, store := setupAuditedDB(t)
	actor := seedServiceUser(t, db, "grace@example.com", "correct horse", "admin")
	svc := newDocumentService(db, nil, newAuditedRecorder(t, store))

	uploaded, err := svc.Upload(context.Background(), actor, multipartHeader(t, "report.pdf", []byte("%PDF-1.4")), "", "", "", false)
	require.NoError(t, err)

	err = svc.Share(context.Background(), actor, uploaded.ID, dto.ShareDocumentRequest{
		Email:   "parent@example.com",
		Message: "term report attached",
	})
	require.NoError(t, err)

	entries := store.byCategory(models.CategoryShare)
	require.Len(t, entries, 1)
	require.Equal(t, "parent@example.com", entries[0].Metadata["shared_with"])
}

func TestDocumentShareValidatesRecipient(t *testing.T) {
	db, store := setupAuditedDB(t)
	actor := seedServiceUser(t, db, "grace@example.com", "correct horse", "admin")
	svc := newDocumentService(db, nil, newAuditedRecorder(t, store))

	err := svc.Share(context.Background(), actor, 1, dto.ShareDocumentRequest{Email: "not-an-email"})
	require.Error(t, err)
	require.Empty(t, store.byCategory(models.CategoryShare))
}

func TestDocumentDeleteMissing(t *testing.T) {
	db, store := setupAuditedDB(t)
	actor := seedServiceUser(t, db, "grace@example.com", "correct horse", "admin")
	svc := newDocumentService(db, nil, newAuditedRecorder(t, store))

	err := svc.Delete(context.Background(), actor, 999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.Empty(t, store.byCategory(models.CategoryDelete))
}
