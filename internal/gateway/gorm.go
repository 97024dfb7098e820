package gateway

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"estate-cms/internal/models"
)

// GormRows implements Rows on MySQL through GORM.
type GormRows struct {
	db *gorm.DB
}

// mysqlDSN builds the connection string. clientFoundRows makes the driver
// report matched rows rather than changed rows, so an update that writes the
// same values back still counts as touching the row.
func mysqlDSN(host, port, user, password, dbname string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		user, password, host, port, dbname)
}

func NewGormRows(host, port, user, password, dbname string) (*GormRows, error) {
	dsn := mysqlDSN(host, port, user, password, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormRows{db: db}, nil
}

// NewGormRowsFromDB wraps an existing gorm.DB instance.
func NewGormRowsFromDB(db *gorm.DB) *GormRows {
	return &GormRows{db: db}
}

func (g *GormRows) DB() *gorm.DB {
	return g.db
}

func (g *GormRows) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate.
func (g *GormRows) InitSchema() error {
	return g.db.AutoMigrate(
		&models.Property{},
		&models.PropertyImage{},
		&models.Category{},
		&models.BlogPost{},
		&models.Review{},
	)
}

func (g *GormRows) Select(table string, q Query, dest interface{}) error {
	tx := g.db.Table(table)

	for _, p := range q.Where {
		clause, arg := predicateSQL(p)
		tx = tx.Where(clause, arg)
	}
	for _, group := range q.OrGroups {
		clauses := make([]string, 0, len(group))
		args := make([]interface{}, 0, len(group))
		for _, p := range group {
			clause, arg := predicateSQL(p)
			clauses = append(clauses, clause)
			args = append(args, arg)
		}
		tx = tx.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		tx = tx.Order(q.OrderBy + " " + dir)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	return tx.Find(dest).Error
}

func (g *GormRows) Insert(table string, row interface{}) error {
	return g.db.Table(table).Create(row).Error
}

func (g *GormRows) Update(table string, id string, patch map[string]interface{}) error {
	res := g.db.Table(table).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update %s: no row with id %s", table, id)
	}
	return nil
}

func (g *GormRows) Delete(table string, id string) error {
	return g.db.Table(table).Where("id = ?", id).Delete(nil).Error
}

// predicateSQL maps a predicate onto a MySQL clause. Substring matches go
// through LOWER() on both sides so collation settings cannot change results.
func predicateSQL(p Predicate) (string, interface{}) {
	switch p.Op {
	case OpEq:
		return p.Field + " = ?", p.Value
	case OpContains:
		return "LOWER(" + p.Field + ") LIKE ?", "%" + strings.ToLower(fmt.Sprint(p.Value)) + "%"
	case OpGte:
		return p.Field + " >= ?", p.Value
	case OpLte:
		return p.Field + " <= ?", p.Value
	case OpIn:
		return p.Field + " IN ?", p.Value
	}
	return p.Field + " = ?", p.Value
}
