package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/dposlabs/blockchain/business/sys/validate"
	"github.com/dposlabs/blockchain/business/web/errs"
	"github.com/dposlabs/blockchain/foundation/blockchain/database"
	"github.com/dposlabs/blockchain/foundation/blockchain/state"
	"github.com/dposlabs/blockchain/foundation/blockchain/transaction"
	"github.com/dposlabs/blockchain/foundation/web"
	"go.uber.org/zap"
)

// Errors handles errors coming out of the call chain. It detects normal
// application errors which are used to respond to the client in a uniform way.
// Unexpected errors (status >= 500) are logged.
func Errors(log *zap.SugaredLogger) web.Middleware {

	m := func(handler web.Handler) web.Handler {

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v, err := web.GetValues(ctx)
			if err != nil {
				return web.NewShutdownError("web value missing from context")
			}

			if err := handler(ctx, w, r); err != nil {
				log.Errorw("ERROR", "traceid", v.TraceID, "message", err)

				var er errs.Response
				var status int

				var ve *transaction.ValidationError
				var se *transaction.SignatureError
				var ce *transaction.ConflictError
				var ie *transaction.InsufficientFundsError
				var che *database.ChainError
				var sae *state.SlotAssignmentError

				switch {
				case validate.IsFieldErrors(err):
					fieldErrors := validate.GetFieldErrors(err)
					er = errs.Response{
						Error:  "data validation error",
						Fields: fieldErrors.Fields(),
					}
					status = http.StatusBadRequest

				case errs.IsTrusted(err):
					trsErr := errs.GetTrusted(err)
					er = errs.Response{
						Error: trsErr.Error(),
					}
					status = trsErr.Status

				case errors.As(err, &ve), errors.As(err, &se), errors.As(err, &ie):
					er = errs.Response{Error: err.Error()}
					status = http.StatusBadRequest

				case errors.As(err, &ce):
					er = errs.Response{Error: err.Error()}
					status = http.StatusConflict

				case errors.As(err, &che), errors.As(err, &sae):
					er = errs.Response{Error: err.Error()}
					status = http.StatusNotAcceptable

				default:
					er = errs.Response{
						Error: http.StatusText(http.StatusInternalServerError),
					}
					status = http.StatusInternalServerError
				}

				if err := web.Respond(ctx, w, er, status); err != nil {
					return err
				}

				// If we receive the shutdown err we need to return it
				// back to the base handler to shut down the service.
				if web.IsShutdown(err) {
					return err
				}
			}

			return nil
		}

		return h
	}

	return m
}
