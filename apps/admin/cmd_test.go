package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/chat"
	"github.com/trezcool/mwalimu/core/course"
	"github.com/trezcool/mwalimu/storage/database"
	"github.com/trezcool/mwalimu/tests"
)

type cliTest struct {
	name       string
	args       []string // without program name
	secret     string
	wantErr    error
	wantErrStr string
	wantOut    string
}

type generatorFunc func(ctx context.Context, req chat.Request) (string, error)

func (f generatorFunc) Generate(ctx context.Context, req chat.Request) (string, error) { return f(ctx, req) }

func setup(t *testing.T) (*testutil.API, *bytes.Buffer) {
	api := testutil.StartAPI(t, generatorFunc(func(context.Context, chat.Request) (string, error) {
		return "ok", nil
	}))
	return api, new(bytes.Buffer)
}

func run(t *testing.T, api *testutil.API, out *bytes.Buffer, secret string, args ...string) error {
	t.Helper()
	out.Reset()
	readPasswordFunc = func(int) ([]byte, error) { return []byte(secret), nil }

	conf := testutil.NewConfig(t)
	root := newRootCmd(&commandLine{conf: conf, out: out})
	if api != nil {
		args = append([]string{"--api", api.URL}, args...)
	}
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), tt.wantErrStr)
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	openDBFunc = func(*core.Config) (*sqlx.DB, error) { return nil, nil }
	gooseRunFunc = func(_ context.Context, _ *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}
	t.Cleanup(func() {
		openDBFunc = openDB
		gooseRunFunc = database.RunMigrations
	})

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErrStr: "requires at least 1 arg(s)"},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "course_notes", "sql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, run(t, nil, new(bytes.Buffer), "", tt.args...))
		})
	}
}

func Test_commandLine_hashSecret(t *testing.T) {
	out := new(bytes.Buffer)

	err := run(t, nil, out, "", "hash-secret")
	assert.Equal(t, errEmptySecret, err)

	require.NoError(t, run(t, nil, out, "professor123", "hash-secret"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	hash := strings.TrimSpace(lines[len(lines)-1])
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("professor123")))
}

func Test_commandLine_login(t *testing.T) {
	api, out := setup(t)

	tests := []cliTest{
		{name: "empty secret", args: []string{"login"}, wantErr: errEmptySecret},
		{name: "wrong secret", args: []string{"login"}, secret: "student", wantErrStr: "Invalid password"},
		{name: "correct secret", args: []string{"login"}, secret: "professor123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(t, api, out, tt.secret, tt.args...)
			checkErr(t, tt, err)
			if err == nil {
				assert.Regexp(t, `[\w-]+\.[\w-]+\.[\w-]+\n$`, out.String())
			}
		})
	}
}

func Test_commandLine_content(t *testing.T) {
	api, out := setup(t)
	dir := t.TempDir()

	// show
	require.NoError(t, run(t, api, out, "", "content", "show"))
	var snap course.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, course.DefaultContent(), snap.Content)

	// push
	doc := filepath.Join(dir, "course.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{
		"topics": [{"id": 1, "title": "Loops", "questions": ["What is a for loop?", ""]}, {"id": 2, "title": ""}],
		"learningObjectives": ["Write a loop", " "],
		"aiScope": "You are a COMP1010 tutor"
	}`), 0o600))

	err := run(t, api, out, "student", "content", "push", doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid password")

	require.NoError(t, run(t, api, out, "professor123", "content", "push", doc))
	assert.Contains(t, out.String(), "saved 1 topics and 1 learning objectives")

	require.NoError(t, run(t, api, out, "", "content", "show"))
	snap = course.Snapshot{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, course.Content{
		Topics:             []course.Topic{{ID: 1, Title: "Loops", Questions: []string{"What is a for loop?"}}},
		LearningObjectives: []string{"Write a loop"},
		AIScope:            "You are a COMP1010 tutor",
	}, snap.Content)

	// backup
	nowFunc = func() time.Time { return time.UnixMilli(1709287200000) }
	t.Cleanup(func() { nowFunc = time.Now })
	require.NoError(t, run(t, api, out, "", "content", "backup", "--dir", dir))
	path := filepath.Join(dir, "courseData-backup-1709287200000.json")
	assert.Equal(t, path+"\n", out.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var backedUp course.Content
	require.NoError(t, json.Unmarshal(data, &backedUp))
	assert.Equal(t, snap.Content, backedUp)
}

func Test_commandLine_slides(t *testing.T) {
	api, out := setup(t)
	dir := t.TempDir()

	notPDF := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notPDF, []byte("hello"), 0o600))
	deck := filepath.Join(dir, "lecture.pdf")
	require.NoError(t, os.WriteFile(deck, testutil.SamplePDF, 0o600))

	tests := []cliTest{
		{name: "missing file", args: []string{"slides", "upload", filepath.Join(dir, "nope.pdf")}, secret: "professor123", wantErrStr: "opening slides"},
		{name: "not a pdf", args: []string{"slides", "upload", notPDF}, secret: "professor123", wantErrStr: "Invalid PDF file"},
		{name: "upload", args: []string{"slides", "upload", deck}, secret: "professor123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, run(t, api, out, tt.secret, tt.args...))
		})
	}
	assert.Regexp(t, `slides-\d{8}T\d{6}-[0-9a-f]{8}\.pdf\n$`, out.String())

	require.NoError(t, run(t, api, out, "", "slides", "info"))
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, true, info["hasData"])

	copyPath := filepath.Join(dir, "copy.pdf")
	require.NoError(t, run(t, api, out, "", "slides", "download", copyPath))
	data, err := os.ReadFile(copyPath)
	require.NoError(t, err)
	assert.Equal(t, testutil.SamplePDF, data)
}
