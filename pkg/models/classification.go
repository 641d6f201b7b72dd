package models

// TableRole is the structural role assigned to a business table.
type TableRole string

const (
	RoleFact      TableRole = "fact"
	RoleDimension TableRole = "dimension"
	RoleBridge    TableRole = "bridge"
	RoleOther     TableRole = "other"
)

// ValidTableRoles contains all valid table role values.
var ValidTableRoles = []TableRole{RoleFact, RoleDimension, RoleBridge, RoleOther}

// ColumnKind is the three-way normalized column type used for join coercion
// and structural counting. Unrecognized raw types normalize to KindText.
type ColumnKind string

const (
	KindNumber ColumnKind = "number"
	KindText   ColumnKind = "text"
	KindDate   ColumnKind = "date"
)
