package cache

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/clock"
	orgdomain "github.com/taxdesk/taxdesk/internal/organization/domain"
	"go.uber.org/fx"
)

const defaultOrgTTL = 5 * time.Minute

// OrgCache stores hot-path organization lookups. The database remains the
// source of truth; entries expire after a fixed TTL.
type OrgCache interface {
	Get(orgID snowflake.ID) (*orgdomain.Organization, bool)
	Set(org *orgdomain.Organization)
	Invalidate(orgID snowflake.ID)
	Sweep() int
}

type orgCache struct {
	orgs Cache[snowflake.ID, *orgdomain.Organization]
	ttl  time.Duration
}

func NewOrgCache(clk clock.Clock) OrgCache {
	return &orgCache{
		orgs: NewTTLCache[snowflake.ID, *orgdomain.Organization](clk),
		ttl:  defaultOrgTTL,
	}
}

func (c *orgCache) Get(orgID snowflake.ID) (*orgdomain.Organization, bool) {
	return c.orgs.Get(orgID)
}

func (c *orgCache) Set(org *orgdomain.Organization) {
	if org == nil || org.ID == 0 {
		return
	}
	c.orgs.Set(org.ID, org, c.ttl)
}

func (c *orgCache) Invalidate(orgID snowflake.ID) {
	c.orgs.Delete(orgID)
}

func (c *orgCache) Sweep() int {
	return c.orgs.Sweep()
}

var Module = fx.Module("cache",
	fx.Provide(NewOrgCache),
	fx.Invoke(startSweeper),
)

// startSweeper evicts expired entries in the background for the process
// lifetime.
func startSweeper(lc fx.Lifecycle, c OrgCache) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						c.Sweep()
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}
