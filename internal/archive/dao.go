// Package archive persists raw parsed job records in MySQL so repeated plot
// runs over the same window do not re-query the accounting system. Aggregated
// results are never stored.
package archive

import (
	"log"
	"os"
	"time"

	"github.com/hpcfair/slurmplot/pkg/core"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type UpdateDao interface {
	SaveJobRecords(recs []*core.JobRecord) error

	// RemoveBefore permanently deletes records submitted before t.
	RemoveBefore(t time.Time) error
}

type QueryDao interface {
	// QueryJobRecords returns records whose bucketing timestamp (start
	// when present, submit otherwise) falls inside the window.
	QueryJobRecords(w core.Window) ([]*core.JobRecord, error)
}

type Dao interface {
	DB() *gorm.DB
	UpdateDao
	QueryDao
}

type daoImpl struct {
	db *gorm.DB
}

var _ Dao = &daoImpl{}

// NewDao connects with the configured DSN and migrates the schema.
func NewDao(dsn string) (Dao, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "", 0), logger.Config{
			LogLevel: logger.Silent,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connecting to archive database")
	}
	if err := db.AutoMigrate(&jobRecordDO{}); err != nil {
		return nil, errors.Wrap(err, "migrating archive schema")
	}
	return &daoImpl{db: db}, nil
}

func (d *daoImpl) DB() *gorm.DB {
	return d.db
}

func (d *daoImpl) SaveJobRecords(recs []*core.JobRecord) error {
	if len(recs) == 0 {
		return nil
	}
	doarr := make([]*jobRecordDO, len(recs))
	for i, r := range recs {
		doarr[i] = toDO(r)
	}
	// Re-imports of an overlapping window update in place.
	err := d.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(doarr).Error
	return errors.Wrap(err, "saving job records")
}

func (d *daoImpl) RemoveBefore(t time.Time) error {
	err := d.db.Where("submit < ?", t).Delete(&jobRecordDO{}).Error
	return errors.Wrap(err, "removing old job records")
}

func (d *daoImpl) QueryJobRecords(w core.Window) ([]*core.JobRecord, error) {
	var doarr []*jobRecordDO
	err := d.db.
		Where("COALESCE(start, submit) >= ? AND COALESCE(start, submit) < ?", w.Start, w.End).
		Order("submit").
		Find(&doarr).Error
	if err != nil {
		return nil, errors.Wrap(err, "querying job records")
	}
	recs := make([]*core.JobRecord, len(doarr))
	for i, do := range doarr {
		recs[i] = do.toRecord()
	}
	return recs, nil
}
