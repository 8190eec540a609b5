package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/pcpedia/leasing-api/internal/leasing/contracts"
	"github.com/pcpedia/leasing-api/internal/shared"
)

// TaskContractExpiry sweeps ACTIVE contracts whose end date has passed.
const TaskContractExpiry = "contracts:expire"

// NewContractExpiryTask constructs the expiry sweep task. The sweep carries
// no payload; the cutoff date comes from the clock at execution time.
func NewContractExpiryTask() *asynq.Task {
	return asynq.NewTask(TaskContractExpiry, nil)
}

// NewContractExpiryHandler returns the handler for TaskContractExpiry. The
// sweep is idempotent, so retries after a transient failure are safe.
func NewContractExpiryHandler(repo contracts.Repository, clock shared.Clock, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		expired, err := repo.ExpireOverdue(ctx, clock.Today())
		if err != nil {
			logger.Error("contract expiry sweep failed", slog.Any("error", err))
			return err
		}
		if expired > 0 {
			logger.Info("contracts expired", slog.Int64("count", expired))
		}
		return nil
	}
}
