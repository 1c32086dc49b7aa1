package dummydb

import (
	"sync"

	"github.com/trezcool/mwalimu/core/chat"
	"github.com/trezcool/mwalimu/core/course"
	"github.com/trezcool/mwalimu/core/slide"
)

type (
	// DB is an in-memory stand-in for the postgres database, used by tests and the `-dummy` mode.
	DB struct {
		content *contentTable
		slide   *slideTable
		audit   *auditTable
	}

	contentTable struct {
		sync.RWMutex
		pkCount int64
		rows    []course.Revision
	}

	slideTable struct {
		sync.RWMutex
		pkCount int64
		rows    []slide.File
	}

	auditTable struct {
		sync.RWMutex
		rows []chat.AuditEntry
	}
)

func Open() *DB {
	return &DB{
		content: &contentTable{},
		slide:   &slideTable{},
		audit:   &auditTable{},
	}
}
