package workercontroller

import (
	"context"
	"time"

	"github.com/cpuguy83/go-docker"
	"github.com/cpuguy83/go-docker/container"
	"github.com/cpuguy83/go-docker/errdefs"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Container controls a named container's lifecycle through
// cpuguy83/go-docker, adapted from the reference daemon's Docker resource
// driver (drivers/rescontainerdocker/main.go): inspect before acting so
// every operation is idempotent, and treat "not found" as already-stopped.
type Container struct {
	Name string
	Log  zerolog.Logger

	client *docker.Client
}

func NewContainer(name string, log zerolog.Logger) (*Container, error) {
	cli := docker.NewClient()
	return &Container{Name: name, Log: log, client: cli}, nil
}

func (c *Container) svc() *container.Service {
	return c.client.ContainerService()
}

func (c *Container) IsRunning(ctx context.Context) (bool, error) {
	info, err := c.svc().Inspect(ctx, c.Name)
	if errdefs.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "workercontroller/container: inspect")
	}
	return info.State.Running, nil
}

func (c *Container) EnsureRunning(ctx context.Context) error {
	running, err := c.IsRunning(ctx)
	if err != nil {
		return err
	}
	if running {
		return nil
	}

	_, err = c.svc().Inspect(ctx, c.Name)
	if errdefs.IsNotFound(err) {
		return errors.Errorf("workercontroller/container: %s does not exist; create it out of band before running the watcher", c.Name)
	}

	if err := c.svc().NewContainer(ctx, c.Name).Start(ctx); err != nil {
		return errors.Wrap(err, "workercontroller/container: start")
	}
	c.Log.Info().Str("container", c.Name).Msg("started worker container")
	return nil
}

func (c *Container) EnsureStopped(ctx context.Context, grace time.Duration) error {
	running, err := c.IsRunning(ctx)
	if err != nil {
		return err
	}
	if !running {
		return nil
	}
	if err := c.svc().NewContainer(ctx, c.Name).Stop(ctx, container.WithStopTimeout(grace)); err != nil {
		return errors.Wrap(err, "workercontroller/container: stop")
	}
	c.Log.Info().Str("container", c.Name).Msg("stopped worker container")
	return nil
}
