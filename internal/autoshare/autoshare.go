// Package autoshare grants a configured owner access to resources the
// service account has just created.
//
// Resources created by a service account live in that account's Drive and
// are invisible to people. After a successful create, Sharer issues exactly
// one permission grant for the new resource. A failed grant is logged and
// recorded but never returned to the caller and never retried: the created
// resource is always handed back.
package autoshare

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/automation-engine/internal/config"
	"github.com/teemow/automation-engine/internal/drive"
	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/logging"
)

// Granter creates a permission on a Drive file. *drive.Client implements it.
type Granter interface {
	ShareFile(ctx context.Context, fileID string, options *drive.ShareOptions) (*drive.Permission, error)
}

// Options configures a Sharer.
type Options struct {
	Enabled               bool
	Owner                 string
	Role                  string
	SendNotificationEmail bool

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger
}

// OptionsFromConfig maps the engine configuration onto sharer options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Enabled:               cfg.AutoShare.Enabled,
		Owner:                 cfg.OwnerEmail,
		Role:                  cfg.AutoShare.Role,
		SendNotificationEmail: cfg.AutoShare.SendNotificationEmail,
	}
}

// Sharer grants the owner access to freshly created resources.
type Sharer struct {
	granter Granter
	opts    Options
	logger  *slog.Logger
}

// New returns a Sharer. An empty role defaults to writer.
func New(granter Granter, opts Options) *Sharer {
	if opts.Role == "" {
		opts.Role = config.DefaultRole
	}
	return &Sharer{
		granter: granter,
		opts:    opts,
		logger:  logging.ForComponent(opts.Logger, "autoshare"),
	}
}

// Enabled reports whether grants will be attempted.
func (s *Sharer) Enabled() bool {
	return s != nil && s.opts.Enabled && s.granter != nil
}

// Owner returns the principal that receives grants.
func (s *Sharer) Owner() string {
	if s == nil {
		return ""
	}
	return s.opts.Owner
}

// Role returns the role granted to the owner.
func (s *Sharer) Role() string {
	if s == nil {
		return ""
	}
	return s.opts.Role
}

// Share grants the owner the configured role on fileID and returns the new
// permission. It returns nil when sharing is disabled, when there is no
// owner or file id, or when the grant fails; failures are only logged.
func (s *Sharer) Share(ctx context.Context, fileID string) *drive.Permission {
	return s.share(ctx, fileID, "")
}

// share is Share with the kind of the created resource for metrics.
func (s *Sharer) share(ctx context.Context, fileID, kind string) *drive.Permission {
	if !s.Enabled() {
		if s != nil {
			s.opts.Metrics.RecordAutoShareForKind(ctx, instrumentation.ShareResultDisabled, s.opts.Role, kind)
		}
		return nil
	}
	if fileID == "" {
		s.logger.WarnContext(ctx, "auto-share skipped: created resource has no id")
		return nil
	}
	if s.opts.Owner == "" {
		s.logger.WarnContext(ctx, "auto-share skipped: no owner configured", logging.FileID(fileID))
		return nil
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, instrumentation.OperationShare,
		instrumentation.NewSpanAttributeBuilder().
			WithResource("file", fileID).
			WithShareRole(s.opts.Role).
			Build()...,
	)
	start := time.Now()

	perm, err := s.granter.ShareFile(ctx, fileID, &drive.ShareOptions{
		Type:                  drive.PermissionTypeUser,
		Role:                  s.opts.Role,
		EmailAddress:          s.opts.Owner,
		SendNotificationEmail: s.opts.SendNotificationEmail,
	})
	instrumentation.EndSpan(span, err)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	s.opts.Metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceDrive, instrumentation.OperationShare, status, time.Since(start))

	grant := (&instrumentation.ShareGrant{
		FileID:    fileID,
		Principal: s.opts.Owner,
		Role:      s.opts.Role,
		Success:   err == nil,
	}).WithSpanContext(ctx)
	if err != nil {
		grant.Error = err.Error()
	} else if perm != nil {
		grant.PermissionID = perm.ID
	}
	s.opts.Metrics.RecordAutoShareForKind(ctx, grant.Result(), s.opts.Role, kind)
	s.opts.Audit.LogShareGrant(grant)

	if err != nil {
		s.logger.WarnContext(ctx, "auto-share failed",
			logging.FileID(fileID),
			logging.Role(s.opts.Role),
			logging.UserHash(s.opts.Owner),
			logging.Err(err))
		return nil
	}

	s.logger.InfoContext(ctx, "auto-shared resource with owner",
		logging.FileID(fileID),
		logging.Role(s.opts.Role),
		logging.UserHash(s.opts.Owner))
	return perm
}

// Created runs create and, when it succeeds, issues one grant for the id of
// its result. The create result and error are returned unchanged; no grant
// is attempted when create fails or the result has no id.
func Created[T any](ctx context.Context, s *Sharer, idOf func(T) string, create func(context.Context) (T, error)) (T, error) {
	result, err := create(ctx)
	if err != nil {
		return result, err
	}

	if idOf == nil {
		idOf = func(v T) string { return ResourceID(v) }
	}
	s.share(ctx, idOf(result), ResourceKind(result))

	return result, nil
}

// Validate reports configuration that would make every grant fail.
func (s *Sharer) Validate() error {
	if s.Enabled() && s.opts.Owner == "" {
		return fmt.Errorf("auto-share is enabled but no owner email is configured")
	}
	if s != nil && !config.IsValidRole(s.opts.Role) {
		return fmt.Errorf("invalid auto-share role %q", s.opts.Role)
	}
	return nil
}
