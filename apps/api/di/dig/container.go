package dig_container

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/mwalimu/apps/api/echo"
	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/auth"
	"github.com/trezcool/mwalimu/core/chat"
	"github.com/trezcool/mwalimu/core/course"
	"github.com/trezcool/mwalimu/core/slide"
	llmsvc "github.com/trezcool/mwalimu/services/llm"
	logsvc "github.com/trezcool/mwalimu/services/logger"
	"github.com/trezcool/mwalimu/storage/database"
	dummydb "github.com/trezcool/mwalimu/storage/database/dummy"
	sqlxrepos "github.com/trezcool/mwalimu/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, sqlx.ExtContext, io.Closer) {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(context.Background(), db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db, db
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newDummyDB(loggerParam DBLoggerParam) (*dummydb.DB, io.Closer) {
	loggerParam.Logger.Warn("using in-memory storage: nothing will be persisted")
	return dummydb.Open(), nopCloser{}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newSlideService(conf *core.Config, repo slide.Repository, logger core.Logger) *slide.Service {
	return slide.NewService(repo, conf.Uploads.MaxBytes, logger)
}

func newRelay(conf *core.Config, gen chat.Generator, courseSvc *course.Service, audit chat.AuditRepository, logger core.Logger) *chat.Relay {
	return chat.NewRelay(gen, courseSvc, audit, conf.Chat.HistoryMode, logger)
}

// New returns a new dependency injection dig.Container built around conf.
// With conf.Database.Dummy set, repositories are kept in memory.
func New(conf *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(func() *core.Config { return conf }))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))

	if conf.Database.Dummy {
		must(c.Provide(newDummyDB))
		must(c.Provide(dummydb.NewContentRepository, dig.As(new(course.Repository))))
		must(c.Provide(dummydb.NewSlideRepository, dig.As(new(slide.Repository))))
		must(c.Provide(dummydb.NewAuditRepository, dig.As(new(chat.AuditRepository))))
	} else {
		must(c.Provide(newDB))
		must(c.Provide(sqlxrepos.NewContentRepository, dig.As(new(course.Repository))))
		must(c.Provide(sqlxrepos.NewSlideRepository, dig.As(new(slide.Repository))))
		must(c.Provide(sqlxrepos.NewAuditRepository, dig.As(new(chat.AuditRepository))))
	}

	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(course.NewService))
	must(c.Provide(newSlideService))
	must(c.Provide(llmsvc.NewGenerator))
	must(c.Provide(newRelay))
	must(c.Provide(auth.NewGate))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
