package mock

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const maxClearAttempts = 5

var once sync.Once
var db *Db

// Db is a shared in-memory SQLite database holding the service tables by name.
type Db struct {
	DbConn *gorm.DB
	models map[string]any
	schema string
}

// NewDb opens the shared database on first use and returns it afterwards.
func NewDb(schema string, models map[string]any) *Db {
	once.Do(
		func() {
			db = open(schema, models)
		},
	)

	return db
}

func open(schema string, models map[string]any) *Db {
	dbSQL, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		panic(err)
	}

	dbSQL.SetMaxOpenConns(1)

	dbConn, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect to database. err: " + err.Error())
	}

	newDbMock := &Db{
		DbConn: dbConn,
		schema: schema,
		models: models,
	}

	if err = newDbMock.ClearDB(); err != nil {
		panic(fmt.Sprintf("failed to clear database. err: %s", err.Error()))
	}

	return newDbMock
}

// ClearDB creates the tables on the first call and empties them on every call.
func (d *Db) ClearDB() (err error) {
	for attempt := 1; attempt <= maxClearAttempts; attempt++ {
		if err = d.DbConn.Exec("ATTACH ':memory:' AS " + d.schema).Error; err != nil {
			if !strings.Contains(err.Error(), "is already in use") {
				return err
			}
		} else {
			if err = d.init(); err != nil {
				continue
			}
			if err = d.checkTables(); err != nil {
				continue
			}
		}

		if err = d.reset(); err != nil {
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to clear database after %d attempts: %w", maxClearAttempts, err)
}

func (d *Db) init() error {
	return d.DbConn.Transaction(func(tx *gorm.DB) error {
		modelList := make([]any, 0, len(d.models))
		for _, model := range d.models {
			modelList = append(modelList, model)
			if err := tx.Migrator().DropTable(model); err != nil {
				return err
			}
		}

		if err := tx.AutoMigrate(modelList...); err != nil {
			return err
		}

		for _, model := range modelList {
			if !tx.Migrator().HasTable(model) {
				return fmt.Errorf("table for model %T was not created", model)
			}
		}
		return nil
	})
}

func (d *Db) reset() error {
	for _, model := range d.models {
		err := d.DbConn.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Db) checkTables() error {
	for _, model := range d.models {
		if !d.DbConn.Migrator().HasTable(model) {
			return fmt.Errorf("table for model %T was not created", model)
		}
	}
	return nil
}

func (d *Db) GetModel(table string) (any, bool) {
	model, ok := d.models[table]
	return model, ok
}

// Count returns how many rows of table match every column/value pair in criteria.
func (d *Db) Count(table string, criteria map[string]any) (int, error) {
	model, ok := d.models[table]
	if !ok {
		return 0, fmt.Errorf("table '%s' not found in models", table)
	}

	rows := reflect.New(reflect.SliceOf(reflect.TypeOf(model).Elem()))
	query := d.DbConn.Unscoped()
	for column, value := range criteria {
		query = query.Where(fmt.Sprintf("%s = ?", column), value)
	}
	if err := query.Find(rows.Interface()).Error; err != nil {
		return 0, err
	}
	return rows.Elem().Len(), nil
}
