package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvelopes(t *testing.T) {
	rec := httptest.NewRecorder()
	Deleted(rec, "req-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"status":"deleted"},"requestId":"req-1"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Fail(rec, http.StatusConflict, "already_checked_in", "already checked in today", "req-2")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"already_checked_in","message":"already checked in today"},"requestId":"req-2"}`, rec.Body.String())
}

func TestDownloads(t *testing.T) {
	rec := httptest.NewRecorder()
	File(rec, "application/pdf", "Payslip_PAY-20240331-ab12cd34.pdf", []byte("%PDF-1.3"))
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Payslip_PAY-20240331-ab12cd34.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "8", rec.Header().Get("Content-Length"))

	rec = httptest.NewRecorder()
	Image(rec, []byte("\xff\xd8\xff\xe0 jpeg"))
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}
