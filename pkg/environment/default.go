package environment

import (
	"context"
	"os"
)

// OS reads environment variables from the process environment.
type OS struct{}

func NewOS() *OS {
	return &OS{}
}

func (*OS) Get(_ context.Context, name string) (string, bool) {
	return os.LookupEnv(name)
}
