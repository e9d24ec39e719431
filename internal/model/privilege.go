package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "drug:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Drug"
}

// Default privileges for the system. The frontend navigation shell is driven
// off these codes: a menu entry renders only when the user holds its privilege.
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Drug catalog
	{Code: "drug:view", Name: "View Drug"},
	{Code: "drug:create", Name: "Create Drug"},
	{Code: "drug:update", Name: "Update Drug"},
	{Code: "drug:delete", Name: "Delete Drug"},
	{Code: "drug:adjust_stock", Name: "Adjust Drug Stock"},
	// Sales
	{Code: "sale:view", Name: "View Sale"},
	{Code: "sale:create", Name: "Create Sale"},
	{Code: "return:create", Name: "Create Return"},
	// Purchasing
	{Code: "purchase:view", Name: "View Purchase"},
	{Code: "purchase:create", Name: "Create Purchase"},
	{Code: "purchase:approve", Name: "Approve Purchase"},
	// Suppliers
	{Code: "supplier:view", Name: "View Supplier"},
	{Code: "supplier:manage", Name: "Manage Supplier"},
	// Customers
	{Code: "customer:view", Name: "View Customer"},
	{Code: "customer:manage", Name: "Manage Customer"},
	// Register shifts
	{Code: "shift:view", Name: "View Shift"},
	{Code: "shift:open", Name: "Open Shift"},
	{Code: "shift:close", Name: "Close Shift"},
	// Reports
	{Code: "report:view", Name: "View Reports"},
	// AI assistant
	{Code: "assistant:use", Name: "Use Drug Interaction Assistant"},
}
