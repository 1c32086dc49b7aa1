package testutil

import (
	"net/http/httptest"
	"testing"

	echoapi "github.com/trezcool/mwalimu/apps/api/echo"
	"github.com/trezcool/mwalimu/core/auth"
	"github.com/trezcool/mwalimu/core/chat"
	"github.com/trezcool/mwalimu/core/course"
	"github.com/trezcool/mwalimu/core/slide"
	"github.com/trezcool/mwalimu/storage/database/dummy"
)

// API is a running API server backed by in-memory storage.
type API struct {
	*httptest.Server
	DB     *dummydb.DB
	Logger *Logger
}

// StartAPI starts an API server that answers chat prompts with gen.
func StartAPI(t *testing.T, gen chat.Generator) *API {
	t.Helper()
	conf := NewConfig(t)
	conf.Server.DisableReqLogs = true

	db := dummydb.Open()
	logger := new(Logger)
	validate, translator := NewValidator()
	courseSvc := course.NewService(dummydb.NewContentRepository(db), validate, logger)
	srv := echoapi.NewServer(conf, logger, echoapi.Deps{
		Translator: translator,
		Gate:       auth.NewGate(conf),
		CourseSvc:  courseSvc,
		SlideSvc:   slide.NewService(dummydb.NewSlideRepository(db), conf.Uploads.MaxBytes, logger),
		Relay:      chat.NewRelay(gen, courseSvc, dummydb.NewAuditRepository(db), conf.Chat.HistoryMode, logger),
	})

	api := &API{Server: httptest.NewServer(srv), DB: db, Logger: logger}
	t.Cleanup(api.Close)
	return api
}
