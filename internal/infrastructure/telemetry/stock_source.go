package telemetry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockSource reads stock levels with two aggregates over
// inventory_records
type GormStockSource struct {
	db *gorm.DB
}

func NewGormStockSource(db *gorm.DB) *GormStockSource {
	return &GormStockSource{db: db}
}

// StockLevels implements StockSource. A record is low when its available
// quantity is at or below its minimum.
func (s *GormStockSource) StockLevels(ctx context.Context) (StockLevels, error) {
	var rows []struct {
		LocationID uuid.UUID
		Reserved   int64
	}
	if err := s.db.WithContext(ctx).Table("inventory_records").
		Select("location_id, SUM(quantity_reserved) AS reserved").
		Group("location_id").
		Having("SUM(quantity_reserved) > 0").
		Scan(&rows).Error; err != nil {
		return StockLevels{}, fmt.Errorf("reserved by location: %w", err)
	}

	levels := StockLevels{ReservedByLocation: make(map[uuid.UUID]int64, len(rows))}
	for _, row := range rows {
		levels.ReservedByLocation[row.LocationID] = row.Reserved
	}

	if err := s.db.WithContext(ctx).Table("inventory_records").
		Where("quantity_on_hand - quantity_reserved <= minimum_quantity").
		Count(&levels.LowStockRecords).Error; err != nil {
		return StockLevels{}, fmt.Errorf("low stock records: %w", err)
	}
	return levels, nil
}

var _ StockSource = (*GormStockSource)(nil)
