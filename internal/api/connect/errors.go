package connect

import (
	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/melodia/internal/app/account"
	"github.com/osa030/melodia/internal/app/catalog"
	"github.com/osa030/melodia/internal/app/session"
	"github.com/osa030/melodia/internal/domain/user"
	"github.com/osa030/melodia/internal/infra/store"
)

// toConnectError maps domain errors to Connect error codes.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}

	var code connect.Code
	switch {
	case errors.Is(err, store.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, account.ErrInvalidCredentials),
		errors.Is(err, account.ErrInvalidToken),
		errors.Is(err, catalog.ErrLoginRequired):
		code = connect.CodeUnauthenticated
	case errors.Is(err, account.ErrEmailTaken),
		errors.Is(err, store.ErrConflict):
		code = connect.CodeAlreadyExists
	case errors.Is(err, user.ErrMissingFields),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, account.ErrPasswordTooShort),
		errors.Is(err, account.ErrEmptyPlaylistName),
		errors.Is(err, catalog.ErrInvalidContext),
		errors.Is(err, store.ErrInvalidReference):
		code = connect.CodeInvalidArgument
	case errors.Is(err, session.ErrSessionClosed):
		code = connect.CodeUnavailable
	default:
		zlog.Error().Err(err).Msg("connect: internal error")
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
	return connect.NewError(code, err)
}

func requireUser(userID string) error {
	if userID == "" {
		return connect.NewError(connect.CodeUnauthenticated, errors.New("login required"))
	}
	return nil
}
