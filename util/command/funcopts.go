package command

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mikempw/failover/util/funcopt"
)

func WithName(name string) funcopt.O {
	return funcopt.F(func(i interface{}) error {
		i.(*T).name = name
		return nil
	})
}

func WithArgs(args []string) funcopt.O {
	return funcopt.F(func(i interface{}) error {
		i.(*T).args = args
		return nil
	})
}

func WithVarArgs(args ...string) funcopt.O {
	return funcopt.F(func(i interface{}) error {
		i.(*T).args = args
		return nil
	})
}

func WithTimeout(d time.Duration) funcopt.O {
	return funcopt.F(func(i interface{}) error {
		i.(*T).timeout = d
		return nil
	})
}

func WithCWD(cwd string) funcopt.O {
	return funcopt.F(func(i interface{}) error {
		i.(*T).cwd = cwd
		return nil
	})
}

func WithEnv(env []string) funcopt.O {
	return funcopt.F(func(i interface{}) error {
		i.(*T).env = env
		return nil
	})
}

func WithLogger(l *zerolog.Logger) funcopt.O {
	return funcopt.F(func(i interface{}) error {
		i.(*T).log = l
		return nil
	})
}
