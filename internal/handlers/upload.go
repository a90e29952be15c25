// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/webp" // register WebP decoder

	"refexcms/internal/httputil"
	"refexcms/internal/models"
	"refexcms/internal/storage"
)

const (
	// maxUploadSize is the maximum accepted file size (20 MB).
	maxUploadSize = 20 << 20

	// maxMultipartMemory is how much of a multipart body is held in memory
	// before spilling to temp files.
	maxMultipartMemory = 8 << 20

	// maxImagePixels caps decoded dimensions to reject decompression bombs.
	maxImagePixels = 50_000_000

	sniffLen = 512
)

// imageTypes maps accepted image MIME types to a file extension.
var imageTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// uploadKind describes one upload endpoint.
type uploadKind struct {
	kind   models.UploadKind
	prefix string // storage key prefix
	accept func(head []byte, name string) (contentType string, ok bool)
	reject string
}

var (
	imageUpload = uploadKind{
		kind:   models.UploadImage,
		prefix: "images",
		accept: acceptImage,
		reject: "must be a JPEG, PNG, GIF, WebP or SVG image",
	}
	pdfUpload = uploadKind{
		kind:   models.UploadPDF,
		prefix: "pdf",
		accept: acceptPDF,
		reject: "must be a PDF document",
	}
)

// Upload stores item thumbnails and PDF documents.
type Upload struct {
	backend storage.Backend
	uploads UploadRecorder
	now     func() time.Time
}

// NewUpload creates the upload handler group.
func NewUpload(backend storage.Backend, uploads UploadRecorder) *Upload {
	return &Upload{backend: backend, uploads: uploads, now: time.Now}
}

// Image accepts a multipart "image" field and returns {"imageUrl": ...}.
func (u *Upload) Image(w http.ResponseWriter, r *http.Request) {
	u.handle(w, r, imageUpload)
}

// PDF accepts a multipart "pdf" field and returns {"pdfUrl": ...}.
func (u *Upload) PDF(w http.ResponseWriter, r *http.Request) {
	u.handle(w, r, pdfUpload)
}

func (u *Upload) handle(w http.ResponseWriter, r *http.Request, k uploadKind) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "file too large (max 20 MB)")
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(k.kind.FormField())
	if err != nil {
		httputil.RespondValidation(w, "no file uploaded", map[string]string{k.kind.FormField(): "file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "file too large (max 20 MB)")
		return
	}

	head, err := readHead(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "could not read file")
		return
	}
	contentType, ok := k.accept(head, header.Filename)
	if !ok {
		httputil.RespondValidation(w, "unsupported file type", map[string]string{k.kind.FormField(): k.reject})
		return
	}
	if err := checkDimensions(file, contentType); err != nil {
		httputil.RespondValidation(w, "invalid image", map[string]string{k.kind.FormField(): err.Error()})
		return
	}

	key := storage.NewKey(k.prefix, extensionFor(contentType), u.now())

	ctx := r.Context()
	url, err := u.backend.Put(ctx, key, contentType, file, header.Size)
	if err != nil {
		slog.Error("store upload failed", "backend", u.backend.Name(), "key", key, "error", err)
		httputil.RespondError(w, http.StatusBadGateway, "upload failed")
		return
	}

	rec := &models.Upload{
		Kind:         k.kind,
		OriginalName: header.Filename,
		ContentType:  contentType,
		SizeBytes:    header.Size,
		StorageKey:   key,
		URL:          url,
		UploadedBy:   actor(r),
	}
	if _, err := u.uploads.Create(rec); err != nil {
		slog.Error("record upload failed", "key", key, "error", err)
		if derr := u.backend.Delete(ctx, key); derr != nil {
			slog.Warn("remove orphaned upload failed", "key", key, "error", derr)
		}
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("file uploaded",
		"kind", k.kind,
		"key", key,
		"size", rec.HumanSize(),
		"by", rec.UploadedBy,
	)
	httputil.RespondJSON(w, http.StatusCreated, map[string]string{k.kind.URLField(): url})
}

// readHead reads the first bytes for sniffing and rewinds the file.
func readHead(f multipart.File) ([]byte, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return head[:n], nil
}

func acceptImage(head []byte, name string) (string, bool) {
	ct := http.DetectContentType(head)
	if _, ok := imageTypes[ct]; ok {
		return ct, true
	}
	// SVG sniffs as text; trust it only with a matching extension and root element.
	isText := strings.HasPrefix(ct, "text/xml") || strings.HasPrefix(ct, "text/plain")
	if isText && strings.EqualFold(filepath.Ext(name), ".svg") &&
		bytes.Contains(bytes.ToLower(head), []byte("<svg")) {
		return "image/svg+xml", true
	}
	return "", false
}

func acceptPDF(head []byte, _ string) (string, bool) {
	ct := http.DetectContentType(head)
	return ct, ct == "application/pdf"
}

// checkDimensions rejects raster images whose pixel count exceeds
// maxImagePixels and rewinds the file.
func checkDimensions(f multipart.File, contentType string) error {
	if !strings.HasPrefix(contentType, "image/") || contentType == "image/svg+xml" {
		return nil
	}
	cfg, _, err := image.DecodeConfig(f)
	if _, serr := f.Seek(0, io.SeekStart); serr != nil {
		return serr
	}
	if err != nil {
		return errors.New("image could not be decoded")
	}
	if cfg.Width*cfg.Height > maxImagePixels {
		return errors.New("image dimensions are too large")
	}
	return nil
}

func extensionFor(contentType string) string {
	if ext, ok := imageTypes[contentType]; ok {
		return ext
	}
	if contentType == "application/pdf" {
		return ".pdf"
	}
	return ""
}
