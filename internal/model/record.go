package model

// Record is one normalized enrollment row from a monthly snapshot.
// Identity within a period is (CustomerID, Level); a customer may
// legitimately appear under several programs, and spuriously under
// several distributors (handled by dedup after the join).
type Record struct {
	Level           string  // registration-level code as declared in the file
	Program         string  // canonical program code after alias resolution
	Region          string  // "Miền"
	SubRegion       string  // "Vùng"
	DistributorID   string  // "Mã NPP"
	DistributorName string  // "Tên NPP"
	SalespersonID   string  // "Mã NVBH"
	SalespersonName string  // "Tên NVBH"
	CustomerID      string  // "Mã khách hàng"
	CustomerName    string  // "Tên khách hàng"
	SaleDay         string  // "Thứ bán hàng"
	Route           string  // "Tuyến"
	Quota           float64 // "Số suất đăng kí", registered display slots
	Sales           float64 // "Doanh số tích lũy hiện tại"
	Threshold       float64 // base minimum per slot times Quota
}

// Key identifies a record within one program group's join.
type Key struct {
	CustomerID string
	Level      string
}

// RecordKey returns the join key for a record.
func (r Record) RecordKey() Key {
	return Key{CustomerID: r.CustomerID, Level: r.Level}
}

// Snapshot is one loaded period file: its records plus the shared
// period label read from the "Giai đoạn" column.
type Snapshot struct {
	PeriodLabel string
	Records     []Record
}
