package ports

import (
	"context"
	"io"

	"go.trai.ch/monorun/internal/core/domain"
)

// Executor runs an out-of-process command.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd and waits for it to exit. Output is streamed to stdout and stderr.
	// A non-zero exit status is returned as an error carrying the exit code.
	Execute(ctx context.Context, cmd *domain.Command, stdout, stderr io.Writer) error
}
