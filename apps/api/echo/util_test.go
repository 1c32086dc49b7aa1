package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	echoapi "github.com/trezcool/mwalimu/apps/api/echo"
	"github.com/trezcool/mwalimu/core/auth"
	"github.com/trezcool/mwalimu/core/chat"
	"github.com/trezcool/mwalimu/core/course"
	"github.com/trezcool/mwalimu/core/slide"
	"github.com/trezcool/mwalimu/storage/database/dummy"
	"github.com/trezcool/mwalimu/tests"
)

const adminPassword = "professor123"

type generatorMock struct {
	reply string
	err   error
	last  chat.Request
}

func (g *generatorMock) Generate(_ context.Context, req chat.Request) (string, error) {
	g.last = req
	return g.reply, g.err
}

type testApp struct {
	srv    *echoapi.Server
	gate   *auth.Gate
	gen    *generatorMock
	logger *testutil.Logger

	contentRepo interface {
		course.Repository
		Count() int
	}
	slideRepo interface {
		slide.Repository
		Count() int
	}
	auditRepo interface {
		chat.AuditRepository
		Entries() []chat.AuditEntry
	}
}

func setup(t *testing.T) *testApp {
	conf := testutil.NewConfig(t)
	conf.Server.DisableReqLogs = true
	conf.Uploads.MaxBytes = 1 << 10

	db := dummydb.Open()
	app := &testApp{
		gen:         &generatorMock{reply: "A variable names a value."},
		logger:      new(testutil.Logger),
		gate:        auth.NewGate(conf),
		contentRepo: dummydb.NewContentRepository(db),
		slideRepo:   dummydb.NewSlideRepository(db),
		auditRepo:   dummydb.NewAuditRepository(db),
	}

	validate, translator := testutil.NewValidator()
	courseSvc := course.NewService(app.contentRepo, validate, app.logger)
	app.srv = echoapi.NewServer(conf, app.logger, echoapi.Deps{
		Translator: translator,
		Gate:       app.gate,
		CourseSvc:  courseSvc,
		SlideSvc:   slide.NewService(app.slideRepo, conf.Uploads.MaxBytes, app.logger),
		Relay:      chat.NewRelay(app.gen, courseSvc, app.auditRepo, conf.Chat.HistoryMode, app.logger),
	})
	return app
}

func (app *testApp) token(t *testing.T) string {
	token, err := app.gate.Login(adminPassword)
	if err != nil {
		t.Fatalf("token(): %v", err)
	}
	return token
}

func (app *testApp) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	app.srv.ServeHTTP(rec, req)
	return rec
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("token", token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func newUploadRequest(t *testing.T, token, filename string, data []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if data != nil {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("newUploadRequest(): %v", err)
		}
		_, _ = part.Write(data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/uploadSlides", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("token", token)
	}
	return req, httptest.NewRecorder()
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

var errUnauthorized = []byte(`{"message": "Unauthorized"}`)
