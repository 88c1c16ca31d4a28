package option

import "gorm.io/gorm"

// QueryOption mutates a gorm statement before it executes.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type orderBy struct {
	clause string
}

func (o orderBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(o.clause)
}

func WithOrderBy(clause string) QueryOption {
	return orderBy{clause: clause}
}

type limit struct {
	n int
}

func (l limit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(l.n)
}

func WithLimit(n int) QueryOption {
	return limit{n: n}
}
