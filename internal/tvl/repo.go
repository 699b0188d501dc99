package tvl

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SnapshotRecord struct {
	ID        uuid.UUID `gorm:"primary_key"`
	CreatedAt time.Time `gorm:"index"`

	Chain     Chain `gorm:"index:idx_snapshot_chain_kind"`
	Kind      Kind  `gorm:"index:idx_snapshot_chain_kind"`
	Block     int64
	IndexedAt *time.Time

	Balances []SnapshotBalance `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE"`
}

func (SnapshotRecord) TableName() string {
	return "snapshots"
}

type SnapshotBalance struct {
	ID         uint      `gorm:"primary_key"`
	SnapshotID uuid.UUID `gorm:"index"`
	Token      string
	Amount     string `gorm:"type:numeric"`
}

func (SnapshotBalance) TableName() string {
	return "snapshot_balances"
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Migrate() error {
	return r.db.AutoMigrate(&SnapshotRecord{}, &SnapshotBalance{})
}

func (r *Repo) Create(snapshot *Snapshot) error {
	record := convertSnapshotToRecord(snapshot)

	return r.db.Create(&record).Error
}

func (r *Repo) GetByFilters(filters []Filter) ([]Snapshot, error) {
	db := r.db.Model(&SnapshotRecord{}).Preload("Balances")
	for _, f := range filters {
		db = f.Apply(db)
	}

	var list []SnapshotRecord
	err := db.Order("created_at desc").Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}

	res := make([]Snapshot, 0, len(list))
	for _, record := range list {
		snapshot, err := convertRecordToSnapshot(record)
		if err != nil {
			return nil, err
		}

		res = append(res, snapshot)
	}

	return res, nil
}

func convertSnapshotToRecord(snapshot *Snapshot) SnapshotRecord {
	balances := make([]SnapshotBalance, 0, len(snapshot.Balances))
	for token, amount := range snapshot.Balances {
		balances = append(balances, SnapshotBalance{
			SnapshotID: snapshot.ID,
			Token:      token,
			Amount:     amount.String(),
		})
	}

	return SnapshotRecord{
		ID:        snapshot.ID,
		CreatedAt: snapshot.CreatedAt,
		Chain:     snapshot.Chain,
		Kind:      snapshot.Kind,
		Block:     snapshot.Block,
		IndexedAt: snapshot.IndexedAt,
		Balances:  balances,
	}
}

func convertRecordToSnapshot(record SnapshotRecord) (Snapshot, error) {
	balances := make(Balances, len(record.Balances))
	for _, item := range record.Balances {
		amount, ok := new(big.Int).SetString(item.Amount, 10)
		if !ok {
			return Snapshot{}, fmt.Errorf("snapshot %s: invalid amount %q for %s", record.ID, item.Amount, item.Token)
		}

		balances[item.Token] = amount
	}

	return Snapshot{
		ID:        record.ID,
		CreatedAt: record.CreatedAt,
		Chain:     record.Chain,
		Kind:      record.Kind,
		Block:     record.Block,
		IndexedAt: record.IndexedAt,
		Balances:  balances,
	}, nil
}
