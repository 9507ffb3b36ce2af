package health

import (
	"context"
	"errors"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Counter is satisfied by the format registry.
type Counter interface {
	Count() int
}

// DatabaseCheck fails when the record database does not answer.
func DatabaseCheck(db Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}

// FormatsCheck fails when no format definition is loaded.
func FormatsCheck(formats Counter) CheckFunc {
	return func(context.Context) error {
		if formats.Count() == 0 {
			return errors.New("no format definitions loaded")
		}
		return nil
	}
}
