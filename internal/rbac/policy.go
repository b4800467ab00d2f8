package rbac

// Operation identifies a protected application operation.
type Operation string

const (
	OpMedicineList   Operation = "medicine.list"
	OpMedicineRead   Operation = "medicine.read"
	OpMedicineCreate Operation = "medicine.create"
	OpMedicineUpdate Operation = "medicine.update"
	OpMedicineDelete Operation = "medicine.delete"
	OpStockAdjust    Operation = "medicine.stock.adjust"
	OpLowStockReport Operation = "medicine.stock.report"
	OpOrderCreate    Operation = "order.create"
	OpOrderRead      Operation = "order.read"
	OpOrderStatus    Operation = "order.status"
	OpSaleCreate     Operation = "sale.create"
	OpSaleRead       Operation = "sale.read"
)

// minimumRole is the policy table: each operation names the least role allowed.
// Roles rank customer < staff < pharmacist < admin.
var minimumRole = map[Operation]Role{
	OpMedicineList:   RoleCustomer,
	OpMedicineRead:   RoleCustomer,
	OpMedicineCreate: RoleAdmin,
	OpMedicineUpdate: RoleAdmin,
	OpMedicineDelete: RoleAdmin,
	OpStockAdjust:    RolePharmacist,
	OpLowStockReport: RolePharmacist,
	OpOrderCreate:    RoleCustomer,
	OpOrderRead:      RoleCustomer,
	OpOrderStatus:    RolePharmacist,
	OpSaleCreate:     RoleCustomer,
	OpSaleRead:       RoleCustomer,
}

// Allowed decides whether role may perform op. Unknown operations are denied.
func Allowed(op Operation, role Role) bool {
	min, ok := minimumRole[op]
	if !ok {
		return false
	}
	return role.AtLeast(min)
}
