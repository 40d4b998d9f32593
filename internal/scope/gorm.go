package scope

import "gorm.io/gorm"

// Clients restricts a query over the clients table to the scope.
func (s Scope) Clients() func(tx *gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		switch s.Kind {
		case KindUnrestricted:
			return tx
		case KindOrg:
			return tx.Where("clients.org_id = ?", s.OrgID)
		case KindAssignment:
			return tx.
				Where("clients.org_id = ?", s.OrgID).
				Where("EXISTS (SELECT 1 FROM client_assignments a WHERE a.client_id = clients.id AND a.staff_id = ?)", s.StaffID)
		default:
			return tx.Where("1 = 0")
		}
	}
}

// Cases restricts a query over the tax_cases table to the scope. Assignment
// reachability goes through the owning client, one relation hop away.
func (s Scope) Cases() func(tx *gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		switch s.Kind {
		case KindUnrestricted:
			return tx
		case KindOrg:
			return tx.Where("tax_cases.org_id = ?", s.OrgID)
		case KindAssignment:
			return tx.
				Where("tax_cases.org_id = ?", s.OrgID).
				Where("EXISTS (SELECT 1 FROM client_assignments a WHERE a.client_id = tax_cases.client_id AND a.staff_id = ?)", s.StaffID)
		default:
			return tx.Where("1 = 0")
		}
	}
}

// Messages restricts a query over the messages table to the scope, going
// through the owning case's client for assignment checks.
func (s Scope) Messages() func(tx *gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		switch s.Kind {
		case KindUnrestricted:
			return tx
		case KindOrg:
			return tx.Where("messages.org_id = ?", s.OrgID)
		case KindAssignment:
			return tx.
				Where("messages.org_id = ?", s.OrgID).
				Where(`EXISTS (
					SELECT 1 FROM tax_cases tc
					JOIN client_assignments a ON a.client_id = tc.client_id
					WHERE tc.id = messages.case_id AND a.staff_id = ?)`, s.StaffID)
		default:
			return tx.Where("1 = 0")
		}
	}
}

// Documents restricts a query over the documents table to the scope, going
// through the owning case's client for assignment checks.
func (s Scope) Documents() func(tx *gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		switch s.Kind {
		case KindUnrestricted:
			return tx
		case KindOrg:
			return tx.Where("documents.org_id = ?", s.OrgID)
		case KindAssignment:
			return tx.
				Where("documents.org_id = ?", s.OrgID).
				Where(`EXISTS (
					SELECT 1 FROM tax_cases tc
					JOIN client_assignments a ON a.client_id = tc.client_id
					WHERE tc.id = documents.case_id AND a.staff_id = ?)`, s.StaffID)
		default:
			return tx.Where("1 = 0")
		}
	}
}
