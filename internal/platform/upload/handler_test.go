package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/careportal/careportal/internal/platform/api"
)

func multipartBody(t *testing.T, field, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	hdr["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	w.Close()
	return buf, w.FormDataContentType()
}

func uploadRequest(t *testing.T, h *Handler, kind, filename, contentType, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, formType := multipartBody(t, "file", filename, contentType, content)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/upload/"+kind, body)
	req.Header.Set(echo.HeaderContentType, formType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/upload/:kind")
	c.SetParamNames("kind")
	c.SetParamValues(kind)
	if err := h.handleUpload(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandleUpload_ReturnsURL(t *testing.T) {
	h := NewHandler(NewMemoryStore(1 << 20))
	rec := uploadRequest(t, h, "documents", "consent.pdf", "application/pdf", "pdf-bytes")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.Success || env.Data["url"] == "" {
		t.Errorf("expected success envelope with url, got %s", rec.Body.String())
	}
}

func TestHandleUpload_UnknownKind(t *testing.T) {
	h := NewHandler(NewMemoryStore(1 << 20))
	rec := uploadRequest(t, h, "avatars", "me.png", "image/png", "png")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	var env api.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success {
		t.Error("expected success=false")
	}
}

func TestHandleUpload_MissingFile(t *testing.T) {
	h := NewHandler(NewMemoryStore(1 << 20))
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/upload/general", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kind")
	c.SetParamValues("general")
	if err := h.handleUpload(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestHandleUpload_TooLarge(t *testing.T) {
	h := NewHandler(NewMemoryStore(4))
	rec := uploadRequest(t, h, "general", "big.bin", "application/octet-stream", "12345")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}
