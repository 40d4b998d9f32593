// Package auth turns a bearer token from the external identity provider
// into an authenticated principal, syncing a staff row on first sight.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/taxdesk/taxdesk/internal/clock"
	"github.com/taxdesk/taxdesk/internal/config"
	orgdomain "github.com/taxdesk/taxdesk/internal/organization/domain"
	"github.com/taxdesk/taxdesk/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrMissingToken  = errors.New("missing_token")
	ErrInvalidToken  = errors.New("invalid_token")
	ErrInactiveStaff = errors.New("inactive_staff")
)

// Claims carried by the identity provider's access token.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Staff  orgdomain.Repository
}

// Authenticator verifies tokens and resolves principals against the staff
// table.
type Authenticator struct {
	secret []byte
	issuer string
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	staff  orgdomain.Repository
}

func New(p Params) *Authenticator {
	return &Authenticator{
		secret: []byte(p.Config.AuthJWTSecret),
		issuer: p.Config.AuthIssuer,
		log:    p.Log.Named("auth"),
		genID:  p.GenID,
		clock:  p.Clock,
		staff:  p.Staff,
	}
}

// Verify parses and validates a raw bearer token.
func (a *Authenticator) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithTimeFunc(a.clock.Now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Resolve maps verified claims to a principal, creating the staff row on
// first authenticated request. New rows start without an organization; the
// scope layer denies them everything until an admin attaches them.
func (a *Authenticator) Resolve(ctx context.Context, claims *Claims) (orgcontext.Principal, error) {
	staff, err := a.staff.GetStaffByIdentity(ctx, claims.Subject)
	if errors.Is(err, orgdomain.ErrStaffNotFound) {
		staff, err = a.createStaff(ctx, claims)
	}
	if err != nil {
		return orgcontext.Principal{}, err
	}
	if !staff.Active {
		return orgcontext.Principal{}, ErrInactiveStaff
	}

	return orgcontext.Principal{
		IdentityID: staff.IdentityID,
		StaffID:    staff.ID,
		OrgID:      staff.OrgID,
		Role:       staff.Role,
		OrgRole:    staff.OrgRole,
	}, nil
}

func (a *Authenticator) createStaff(ctx context.Context, claims *Claims) (*orgdomain.StaffMember, error) {
	now := a.clock.Now()
	staff := &orgdomain.StaffMember{
		ID:          a.genID.Generate(),
		IdentityID:  claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		Role:        orgdomain.RoleStaff,
		OrgRole:     orgdomain.OrgRoleMember,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.staff.CreateStaff(ctx, staff); err != nil {
		// A concurrent first request may have won the insert; read back.
		existing, readErr := a.staff.GetStaffByIdentity(ctx, claims.Subject)
		if readErr != nil {
			return nil, err
		}
		return existing, nil
	}
	a.log.Info("staff synced from identity provider",
		zap.String("identity_id", claims.Subject))
	return staff, nil
}
