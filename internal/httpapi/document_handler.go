package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/service"
	"github.com/emplix/emplix/internal/storage"
)

// maxUploadBytes caps document uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// DocumentHandler exposes employee file uploads, listings with signed
// download links, and the signed download endpoint itself.
type DocumentHandler struct {
	documents *service.DocumentService
	objects   *storage.LocalStorage
}

// NewDocumentHandler creates the document handler.
func NewDocumentHandler(documents *service.DocumentService, objects *storage.LocalStorage) *DocumentHandler {
	return &DocumentHandler{documents: documents, objects: objects}
}

// Upload accepts a multipart form with a "file" part and an optional "type"
// field. Admin only.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	employeeID, err := pathEmployeeID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		verr := &service.ValidationError{}
		verr.Fields = []service.FieldError{{Field: "file", Rule: "multipart", Message: "invalid or oversized multipart body"}}
		writeError(w, r, verr)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		verr := &service.ValidationError{}
		verr.Fields = []service.FieldError{{Field: "file", Rule: "required", Message: "is required"}}
		writeError(w, r, verr)
		return
	}
	defer file.Close()

	docType := r.FormValue("type")
	if docType == "" {
		docType = models.DocumentTypeOther
	}

	claims := claimsFromContext(r.Context())
	doc, err := h.documents.Upload(r.Context(), claims.TenantID, employeeID, docType,
		header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newDocumentResponse(doc, ""))
}

type documentResponse struct {
	DocumentID string    `json:"documentId"`
	EmployeeID string    `json:"employeeId"`
	Type       string    `json:"type"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
	URL        string    `json:"url,omitempty"`
}

func newDocumentResponse(doc *models.Document, url string) documentResponse {
	return documentResponse{
		DocumentID: doc.DocumentID.String(),
		EmployeeID: doc.EmployeeID.String(),
		Type:       doc.Type,
		FileName:   doc.FileName,
		MimeType:   doc.MimeType,
		Size:       doc.Size,
		CreatedAt:  doc.CreatedAt,
		URL:        url,
	}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	employeeID, err := pathEmployeeID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := claimsFromContext(r.Context())
	links, err := h.documents.List(r.Context(), claims.TenantID, employeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := make([]documentResponse, 0, len(links))
	for _, link := range links {
		res = append(res, newDocumentResponse(link.Document, link.URL))
	}
	writeJSON(w, http.StatusOK, res)
}

// Delete removes a document. Admin only.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		verr := &service.ValidationError{}
		verr.Fields = []service.FieldError{{Field: "id", Rule: "uuid", Message: "must be a valid uuid"}}
		writeError(w, r, verr)
		return
	}

	claims := claimsFromContext(r.Context())
	if err := h.documents.Delete(r.Context(), claims.TenantID, documentID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Download serves a stored object when the URL signature checks out. It
// sits outside tenant resolution and session auth: the signature is the
// credential.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	container := r.PathValue("container")
	key := r.PathValue("key")

	expires, err := strconv.ParseInt(r.URL.Query().Get("expires"), 10, 64)
	if err != nil || !h.objects.VerifySignature(container, key, r.URL.Query().Get("sig"), expires) {
		writeErrorCode(w, http.StatusForbidden, "invalid_signature", "signature is invalid or expired")
		return
	}

	obj, err := h.objects.Open(r.Context(), container, key)
	if err != nil {
		writeErrorCode(w, http.StatusNotFound, "not_found", "object not found")
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, obj)
}
