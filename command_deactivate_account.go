package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type DeactivateAccountMessage struct {
	UserID     string `json:"-"`
	OnResponse func()
}

func (p DeactivateAccountMessage) Type() string { return "user.deactivate" }

type DeactivateAccountHandler struct {
	repo     RepositoryManager
	activity ActivitySink
	logger   Logger
}

// NewDeactivateAccountHandler creates a handler with sane defaults.
func NewDeactivateAccountHandler(repo RepositoryManager) *DeactivateAccountHandler {
	return &DeactivateAccountHandler{
		repo:     repo,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit deactivation events.
func (h *DeactivateAccountHandler) WithActivitySink(sink ActivitySink) *DeactivateAccountHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *DeactivateAccountHandler) WithLogger(logger Logger) *DeactivateAccountHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *DeactivateAccountHandler) Execute(ctx context.Context, event DeactivateAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account deactivation",
		)
	default:
		return h.execute(ctx, event)
	}
}

// execute flips is_active off, the record survives. Existing sessions still
// die because the session validity policy rejects inactive accounts.
func (h *DeactivateAccountHandler) execute(ctx context.Context, event DeactivateAccountMessage) error {
	user := &User{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error

		user, err = h.repo.Users().GetByIdentifierTx(ctx, tx, event.UserID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrIdentityNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for deactivation")
		}

		if err := h.repo.Users().DeactivateTx(ctx, tx, user.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deactivate account")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deactivate account")
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventAccountDeactivated,
		Actor:     ActorRef{ID: user.ID.String(), Type: "user"},
		UserID:    user.ID.String(),
	})

	if event.OnResponse != nil {
		event.OnResponse()
	}

	return nil
}
