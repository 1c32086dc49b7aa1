package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/course"
	"github.com/trezcool/mwalimu/storage/database"
)

// SamplePDF is the smallest payload accepted as a slide deck.
var SamplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

// NewValidator returns a validator set up the way the API server sets it up.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	return validate, translator
}

// NewConfig returns a TEST config with a known admin secret.
func NewConfig(t *testing.T) *core.Config {
	t.Setenv("ENV", "TEST")
	conf := core.NewConfig()
	conf.SecretKey = "test-secret-key"
	conf.Auth.AdminPassword = "professor123"
	conf.Auth.AdminPasswordHash = ""
	conf.Chat.HistoryMode = core.HistoryModeFixedScope
	return conf
}

// Logger is a core.Logger that keeps what it is given.
type Logger struct {
	mu      sync.Mutex
	entries []string
}

var _ core.Logger = (*Logger)(nil) // interface compliance check

func (l *Logger) log(level, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := level + ": " + msg
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			entry += " | " + err.Error()
		}
	}
	l.entries = append(l.entries, entry)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args...) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args...) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args...) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args...) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args...) }

func (l *Logger) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

// Contains reports whether any entry contains s.
func (l *Logger) Contains(s string) bool {
	for _, e := range l.Entries() {
		if strings.Contains(e, s) {
			return true
		}
	}
	return false
}

// PrepareDB starts a throwaway postgres container, migrates it and returns a connection.
// Skipped in -short mode.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres-backed test in short mode")
	}

	ctx := context.Background()
	container, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcPostgres.WithDatabase("mwalimu_test"),
		tcPostgres.WithUsername("mwalimu"),
		tcPostgres.WithPassword("mwalimu"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("PrepareDB(): starting postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("PrepareDB(): terminating postgres: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("PrepareDB(): connection string: %v", err)
	}

	conf := &core.Config{}
	conf.Database.URL = dsn
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(ctx, db); err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	return db
}

// CreateRevision stores c through repo and fails the test on error.
func CreateRevision(t *testing.T, repo course.Repository, c course.Content) course.Revision {
	t.Helper()
	rev, err := repo.CreateRevision(context.Background(), c)
	if err != nil {
		t.Fatalf("CreateRevision() failed: %v", err)
	}
	return rev
}

// Content returns a valid course document with n topics.
func Content(n int) course.Content {
	c := course.Content{
		Topics:             make([]course.Topic, 0, n),
		LearningObjectives: []string{"Write a loop", "Read a stack trace"},
		AIScope:            "You are a COMP1010 tutor",
	}
	for i := 1; i <= n; i++ {
		c.Topics = append(c.Topics, course.Topic{
			ID:        i,
			Title:     fmt.Sprintf("Topic %d", i),
			Questions: []string{fmt.Sprintf("Question %d?", i)},
		})
	}
	return c
}
