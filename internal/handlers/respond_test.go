package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/middleware"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// docOf round-trips v through BSON so it can be served as a mock reply.
func docOf(t testing.TB, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func findReply(t testing.TB, coll string, docs ...interface{}) bson.D {
	batch := make([]bson.D, len(docs))
	for i, d := range docs {
		batch[i] = docOf(t, d)
	}
	return mtest.CreateCursorResponse(0, "agora."+coll, mtest.FirstBatch, batch...)
}

func countReply(coll string, n int64) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, "agora."+coll, mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, "agora."+coll, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func noDocumentReply() bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil})
}

// signedIn builds a request whose context carries the profile's identity.
func signedIn(method, target string, body interface{}, p *models.Profile) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if p != nil {
		req = req.WithContext(middleware.WithUserID(req.Context(), uuid.MustParse(p.UserID)))
	}
	return req
}

func decodeBody(t testing.TB, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func useMock(mt *mtest.T) {
	database.DB = mt.DB
	database.RedisClient = nil
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{services.ErrNotFound, http.StatusNotFound, "Not found"},
		{fmt.Errorf("wrap: %w", services.ErrForbidden), http.StatusForbidden, "You are not allowed to do that"},
		{fmt.Errorf("%w: report already pending", services.ErrConflict), http.StatusConflict, "report already pending"},
		{services.ErrConflict, http.StatusConflict, "The resource was modified concurrently, please retry"},
		{services.ErrPollClosed, http.StatusBadRequest, services.ErrPollClosed.Error()},
		{context.DeadlineExceeded, http.StatusServiceUnavailable, "Request timed out"},
		{errors.New("boom"), http.StatusInternalServerError, "Failed"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, "Failed")
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, tt.msg, body["message"])
	}
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
		ok   bool
	}{
		{"malformed", `{"target_type":`, "Invalid request body", false},
		{"missing field", `{"target_id":"64b000000000000000000001","reason":"spam"}`, "target_type is required", false},
		{"bad enum", `{"target_type":"user","target_id":"64b000000000000000000001","reason":"spam"}`, "target_type must be one of: post comment reply profile", false},
		{"bad id", `{"target_type":"post","target_id":"nope","reason":"spam"}`, "target_id must be a valid id", false},
		{"valid", `{"target_type":"post","target_id":"64b000000000000000000001","reason":"spam"}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			var dst CreateReportRequest
			ok := decodeAndValidate(rec, req, &dst)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, tt.msg, decodeBody(t, rec)["message"])
			}
		})
	}
}

func TestPagination(t *testing.T) {
	p := pagination(httptest.NewRequest(http.MethodGet, "/?limit=500&skip=40", nil))
	assert.EqualValues(t, 100, p.Limit)
	assert.EqualValues(t, 40, p.Skip)

	p = pagination(httptest.NewRequest(http.MethodGet, "/?limit=-3&skip=x", nil))
	assert.EqualValues(t, 20, p.Limit)
	assert.EqualValues(t, 0, p.Skip)
}

func TestCurrentProfile(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no session", func(mt *mtest.T) {
		useMock(mt)
		rec := httptest.NewRecorder()
		assert.Nil(mt, currentProfile(context.Background(), rec, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(mt, http.StatusUnauthorized, rec.Code)
	})

	mt.Run("suspended", func(mt *mtest.T) {
		useMock(mt)
		p := testProfile()
		p.IsSuspended = true
		mt.AddMockResponses(findReply(mt, database.ProfilesCollection, p))

		rec := httptest.NewRecorder()
		assert.Nil(mt, currentProfile(context.Background(), rec, signedIn(http.MethodGet, "/", nil, p)))
		assert.Equal(mt, http.StatusForbidden, rec.Code)
	})
}
