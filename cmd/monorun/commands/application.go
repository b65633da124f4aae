package commands

import (
	"context"
	"io"

	"go.trai.ch/monorun/internal/app"
)

// Application is the behavior the commands drive.
//
//go:generate mockgen -source=application.go -destination=mocks/mock_application.go -package=mocks
type Application interface {
	Build(ctx context.Context, opts app.BuildOptions) error
	Clean(ctx context.Context, opts app.CleanOptions) error
	Graph(ctx context.Context, dir string, w io.Writer) error
	Order(ctx context.Context, dir, name string, w io.Writer) error
	Hash(ctx context.Context, dir string, packages []string, w io.Writer) error
	SetLogFormat(flag string) error
	SetVerbose(verbose bool)
}

var _ Application = (*app.App)(nil)
