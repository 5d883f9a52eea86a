package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/namay10/userhub/internal/domain/user"
	"github.com/namay10/userhub/internal/http/handlers"
)

func bindRouter() *gin.Engine {
	r := gin.New()

	r.POST("/bind", func(c *gin.Context) {
		var req user.SignUpRequest

		if !handlers.BindJSON(c, &req) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r
}

func TestBindJSONFieldDetails(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantRule  string
	}{
		{
			name:      "missing required field",
			body:      `{"firstName":"Ann","lastName":"Lee","password":"secret1"}`,
			wantField: "email",
			wantRule:  "required",
		},
		{
			name:      "invalid email",
			body:      `{"firstName":"Ann","lastName":"Lee","email":"nope","password":"secret1"}`,
			wantField: "email",
			wantRule:  "email",
		},
		{
			name:      "too short password",
			body:      `{"firstName":"Ann","lastName":"Lee","email":"ann@x.com","password":"abc"}`,
			wantField: "password",
			wantRule:  "min",
		},
		{
			name:      "type mismatch",
			body:      `{"firstName":7,"lastName":"Lee","email":"ann@x.com","password":"secret1"}`,
			wantField: "firstName",
			wantRule:  "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bindRouter()

			req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}

			var resp struct {
				Error struct {
					Code    string `json:"code"`
					Details struct {
						Fields []handlers.FieldError `json:"fields"`
					} `json:"details"`
				} `json:"error"`
			}

			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if resp.Error.Code != "invalid_request" {
				t.Errorf("code = %q, want invalid_request", resp.Error.Code)
			}

			found := false

			for _, fe := range resp.Error.Details.Fields {
				if fe.Field == tt.wantField && fe.Rule == tt.wantRule {
					found = true
				}
			}

			if !found {
				t.Errorf("no field error %s/%s in %s", tt.wantField, tt.wantRule, rec.Body.String())
			}
		})
	}
}

func TestBindJSONSyntaxError(t *testing.T) {
	r := bindRouter()

	req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(`{"firstName":`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
