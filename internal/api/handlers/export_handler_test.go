package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/clinic-site/internal/api/handlers"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/pkg/dates"
)

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Collect(ctx context.Context, from, to dates.Date) (*entities.ExportBundle, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ExportBundle), args.Error(1)
}

func (m *MockExportService) WriteJSON(w io.Writer, bundle *entities.ExportBundle) error {
	args := m.Called(w, bundle)
	_, _ = io.WriteString(w, `{"appointments":[]}`)
	return args.Error(0)
}

func (m *MockExportService) WriteXLSX(w io.Writer, bundle *entities.ExportBundle) error {
	args := m.Called(w, bundle)
	_, _ = io.WriteString(w, "PK")
	return args.Error(0)
}

func TestExportHandler_Export(t *testing.T) {
	from := dates.New(2026, time.January, 1)
	to := dates.New(2026, time.March, 31)
	bundle := &entities.ExportBundle{From: from, To: to}

	t.Run("defaults to xlsx", func(t *testing.T) {
		svc := new(MockExportService)
		handler := handlers.NewExportHandler(svc)
		svc.On("Collect", mock.Anything, from, to).Return(bundle, nil)
		svc.On("WriteXLSX", mock.Anything, bundle).Return(nil)

		w := httptest.NewRecorder()
		handler.Export(w, httptest.NewRequest(http.MethodGet, "/api/admin/export?from=2026-01-01&to=2026-03-31", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
		disposition := w.Header().Get("Content-Disposition")
		assert.True(t, strings.HasPrefix(disposition, `attachment; filename="clinic-export-`))
		assert.True(t, strings.HasSuffix(disposition, `.xlsx"`))
		assert.Equal(t, "PK", w.Body.String())
		svc.AssertNotCalled(t, "WriteJSON", mock.Anything, mock.Anything)
	})

	t.Run("json", func(t *testing.T) {
		svc := new(MockExportService)
		handler := handlers.NewExportHandler(svc)
		svc.On("Collect", mock.Anything, dates.Date{}, dates.Date{}).Return(bundle, nil)
		svc.On("WriteJSON", mock.Anything, bundle).Return(nil)

		w := httptest.NewRecorder()
		handler.Export(w, httptest.NewRequest(http.MethodGet, "/api/admin/export?format=JSON", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"appointments":[]}`, w.Body.String())
	})

	t.Run("unsupported format", func(t *testing.T) {
		svc := new(MockExportService)
		handler := handlers.NewExportHandler(svc)

		w := httptest.NewRecorder()
		handler.Export(w, httptest.NewRequest(http.MethodGet, "/api/admin/export?format=csv", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "format must be xlsx or json", errorMessage(t, w))
		svc.AssertNotCalled(t, "Collect", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad range date", func(t *testing.T) {
		svc := new(MockExportService)
		handler := handlers.NewExportHandler(svc)

		w := httptest.NewRecorder()
		handler.Export(w, httptest.NewRequest(http.MethodGet, "/api/admin/export?from=yesterday", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
