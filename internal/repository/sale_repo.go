package repository

import (
	"time"

	"go-pharmacy-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	FindAll() ([]model.Sale, error)
	FindByID(id uuid.UUID) (*model.Sale, error)
	FindBySerial(serial int64) (*model.Sale, error)
	FindByCustomerID(customerID uuid.UUID) ([]model.Sale, error)
	FindByDateRange(startDate, endDate time.Time) ([]model.Sale, error)

	// Counters used by the sale processor for serial and per-day order
	// numbers. Both run inside the caller's transaction.
	CountAll(tx *gorm.DB) (int64, error)
	CountOnDay(tx *gorm.DB, day time.Time) (int64, error)

	GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error)
	GetDashboardStats() (*DashboardStats, error)
	CustomerAggregates(customerID uuid.UUID) (totalPurchases float64, lastVisit *time.Time, err error)

	FindReturnsBySaleID(saleID uuid.UUID) ([]model.Return, error)
	FindAllReturns() ([]model.Return, error)
	TotalRefundsForSale(tx *gorm.DB, saleID uuid.UUID) (float64, error)
}

// SalesMovementData feeds the daily sales chart.
type SalesMovementData struct {
	Date    string  `json:"date"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
	Refunds float64 `json:"refunds"`
}

// DashboardStats is the overview block on the dashboard.
type DashboardStats struct {
	SalesToday     int64   `json:"sales_today"`
	RevenueToday   float64 `json:"revenue_today"`
	TotalDrugs     int64   `json:"total_drugs"`
	LowStockCount  int64   `json:"low_stock_count"`
	ExpiringCount  int64   `json:"expiring_count"`
	TotalValuation float64 `json:"total_valuation"`
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) FindAll() ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Preload("Items").Preload("Customer").Preload("SoldByUser").
		Order("date DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items").Preload("Items.Drug").Preload("Customer").Preload("SoldByUser").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindBySerial(serial int64) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items").Preload("Customer").First(&sale, "serial = ?", serial).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindByCustomerID(customerID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Preload("Items").Where("customer_id = ?", customerID).
		Order("date DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByDateRange(startDate, endDate time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Preload("Items").Preload("Customer").
		Where("date BETWEEN ? AND ?", startDate, endDate).
		Order("date DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) CountAll(tx *gorm.DB) (int64, error) {
	var count int64
	err := tx.Model(&model.Sale{}).Count(&count).Error
	return count, err
}

func (r *saleRepo) CountOnDay(tx *gorm.DB, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	var count int64
	err := tx.Model(&model.Sale{}).
		Where("date >= ? AND date < ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *saleRepo) GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error) {
	var results []SalesMovementData

	rows, err := r.db.Model(&model.Sale{}).
		Select(`
			DATE(date) as day,
			COUNT(*) as count,
			COALESCE(SUM(total), 0) as revenue,
			COALESCE(SUM(total - net_total), 0) as refunds
		`).
		Where("date BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(date)").
		Order("day ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data SalesMovementData
		if err := rows.Scan(&data.Date, &data.Count, &data.Revenue, &data.Refunds); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}

func (r *saleRepo) GetDashboardStats() (*DashboardStats, error) {
	var stats DashboardStats

	todayStart := time.Now().Truncate(24 * time.Hour)

	r.db.Model(&model.Sale{}).Where("date >= ?", todayStart).Count(&stats.SalesToday)
	r.db.Model(&model.Sale{}).Where("date >= ?", todayStart).
		Select("COALESCE(SUM(net_total), 0)").Scan(&stats.RevenueToday)

	r.db.Model(&model.Drug{}).Count(&stats.TotalDrugs)
	r.db.Model(&model.Drug{}).Where("stock < ?", 10).Count(&stats.LowStockCount)
	r.db.Model(&model.Drug{}).
		Where("expiry_date IS NOT NULL AND expiry_date <= ?", time.Now().AddDate(0, 1, 0)).
		Count(&stats.ExpiringCount)
	r.db.Model(&model.Drug{}).Select("COALESCE(SUM(stock * price), 0)").Scan(&stats.TotalValuation)

	return &stats, nil
}

func (r *saleRepo) CustomerAggregates(customerID uuid.UUID) (float64, *time.Time, error) {
	var total float64
	err := r.db.Model(&model.Sale{}).
		Where("customer_id = ?", customerID).
		Select("COALESCE(SUM(net_total), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, nil, err
	}

	var lastVisit *time.Time
	err = r.db.Model(&model.Sale{}).
		Where("customer_id = ?", customerID).
		Select("MAX(date)").
		Scan(&lastVisit).Error
	if err != nil {
		return 0, nil, err
	}

	return total, lastVisit, nil
}

func (r *saleRepo) FindReturnsBySaleID(saleID uuid.UUID) ([]model.Return, error) {
	var returns []model.Return
	err := r.db.Preload("Items").Where("sale_id = ?", saleID).
		Order("date ASC").Find(&returns).Error
	return returns, err
}

func (r *saleRepo) FindAllReturns() ([]model.Return, error) {
	var returns []model.Return
	err := r.db.Preload("Items").Preload("Sale").Order("date DESC").Find(&returns).Error
	return returns, err
}

func (r *saleRepo) TotalRefundsForSale(tx *gorm.DB, saleID uuid.UUID) (float64, error) {
	var total float64
	err := tx.Model(&model.Return{}).
		Where("sale_id = ?", saleID).
		Select("COALESCE(SUM(total_refund), 0)").
		Scan(&total).Error
	return total, err
}
