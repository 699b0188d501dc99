package tvl

import (
	"gorm.io/gorm"
)

type Filter interface {
	Apply(*gorm.DB) *gorm.DB
}

type SnapshotFilter struct {
	Chain *Chain
	Kind  *Kind
}

func (f SnapshotFilter) Apply(db *gorm.DB) *gorm.DB {
	var (
		dummy SnapshotRecord
		_     = dummy.Chain
		_     = dummy.Kind
	)

	if f.Chain != nil {
		db = db.Where("chain = ?", *f.Chain)
	}

	if f.Kind != nil {
		db = db.Where("kind = ?", *f.Kind)
	}

	return db
}

type PageFilter struct {
	Limit  int
	Offset int
}

func (f PageFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.Limit > 0 {
		db = db.Limit(f.Limit)
	}

	if f.Offset > 0 {
		db = db.Offset(f.Offset)
	}

	return db
}
