// Package migration brings the schema up to date on startup so local and
// self-hosted deployments work out of the box.
package migration

import (
	auditdomain "github.com/taxdesk/taxdesk/internal/audit/domain"
	clientdomain "github.com/taxdesk/taxdesk/internal/client/domain"
	documentdomain "github.com/taxdesk/taxdesk/internal/document/domain"
	magiclinkdomain "github.com/taxdesk/taxdesk/internal/magiclink/domain"
	messagedomain "github.com/taxdesk/taxdesk/internal/message/domain"
	orgdomain "github.com/taxdesk/taxdesk/internal/organization/domain"
	taxcasedomain "github.com/taxdesk/taxdesk/internal/taxcase/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order.
func Models() []any {
	return []any{
		&orgdomain.Organization{},
		&orgdomain.StaffMember{},
		&orgdomain.StaffInvite{},
		&clientdomain.Client{},
		&clientdomain.Assignment{},
		&taxcasedomain.Engagement{},
		&taxcasedomain.TaxCase{},
		&magiclinkdomain.MagicLink{},
		&magiclinkdomain.FormSubmission{},
		&documentdomain.Document{},
		&messagedomain.Message{},
		&auditdomain.AuditLog{},
	}
}

func Run(conn *gorm.DB) error {
	return conn.AutoMigrate(Models()...)
}

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		return Run(conn)
	}),
)
