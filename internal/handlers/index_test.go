package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"learnloop/internal/storage"
)

func TestIndexHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		idx        *fakeIndexer
		wantStatus int
		wantDocs   int
	}{
		{name: "synced", method: http.MethodPost, idx: &fakeIndexer{synced: 4}, wantStatus: http.StatusOK, wantDocs: 4},
		{name: "no mirror", method: http.MethodPost, idx: &fakeIndexer{}, wantStatus: http.StatusOK},
		{name: "storage failure", method: http.MethodPost, idx: &fakeIndexer{err: storage.ErrStorageFailure}, wantStatus: http.StatusInternalServerError},
		{name: "wrong method", method: http.MethodGet, idx: &fakeIndexer{}, wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewIndexHandler(tt.idx).ServeHTTP(w, httptest.NewRequest(tt.method, "/api/index", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if resp := decodeBody[IndexResponse](t, w); resp.Documents != tt.wantDocs {
					t.Errorf("documents = %d, want %d", resp.Documents, tt.wantDocs)
				}
			}
		})
	}
}
