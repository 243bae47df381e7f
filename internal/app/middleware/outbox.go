package middleware

import (
	"context"
	"errors"

	"tourbook/internal/app/commands"
	"tourbook/internal/app/outbox"
)

// OutboxFlush flushes buffered events after every command, failed ones
// included: a rejected booking still records its failure event.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if flushErr := box.Flush(ctx); flushErr != nil {
				return nil, errors.Join(err, flushErr)
			}
			if err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
