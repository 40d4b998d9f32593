// Package seed bootstraps a demo organization so a fresh local or
// self-hosted install is usable without manual setup.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/clock"
	"github.com/taxdesk/taxdesk/internal/config"
	orgdomain "github.com/taxdesk/taxdesk/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	demoOrgName       = "Demo Firm"
	demoOrgSlug       = "demo-firm"
	demoAdminIdentity = "local|demo-admin"
	demoAdminEmail    = "admin@demo-firm.test"
)

// EnsureDemoOrg creates the demo organization and its admin staff member
// if they do not exist. Safe to run on every startup.
func EnsureDemoOrg(conn *gorm.DB, node *snowflake.Node, clk clock.Clock) error {
	if conn == nil {
		return errors.New("seed requires a database handle")
	}

	ctx := context.Background()
	now := clk.Now()

	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var org orgdomain.Organization
		err := tx.Where("slug = ?", demoOrgSlug).First(&org).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			org = orgdomain.Organization{
				ID:        node.Generate(),
				Name:      demoOrgName,
				Slug:      demoOrgSlug,
				CreatedAt: now,
				UpdatedAt: now,
			}
			err = tx.Create(&org).Error
		}
		if err != nil {
			return err
		}

		var staff orgdomain.StaffMember
		err = tx.Where("identity_id = ?", demoAdminIdentity).First(&staff).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			staff = orgdomain.StaffMember{
				ID:         node.Generate(),
				OrgID:      org.ID,
				IdentityID: demoAdminIdentity,
				Email:      demoAdminEmail,
				Role:       orgdomain.RoleAdmin,
				OrgRole:    orgdomain.OrgRoleAdmin,
				Active:     true,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			err = tx.Create(&staff).Error
		}
		return err
	})
}

var Module = fx.Module("seed",
	fx.Invoke(func(cfg config.Config, conn *gorm.DB, node *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
		if !cfg.SeedDemoOrg {
			return nil
		}
		if err := EnsureDemoOrg(conn, node, clk); err != nil {
			return err
		}
		log.Info("demo organization ready", zap.String("slug", demoOrgSlug))
		return nil
	}),
)
