//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

const (
	postgresContainer = "kafkametrics-postgres"
	postgresImage     = "postgres:14.2"
)

var LocalBin = filepath.Join(os.Getenv("PWD"), "bin")

func makeLocalBin() error {
	return os.MkdirAll(LocalBin, os.ModePerm)
}

// Build compiles the kafkametrics binary into ./bin.
func Build() error {
	mg.Deps(makeLocalBin)
	return sh.RunV("go", "build", "-o", filepath.Join(LocalBin, "kafkametrics"), "./cmd/kafkametrics")
}

// Postgres starts a local postgres container matching the test database settings.
func Postgres() error {
	if err := sh.Run(dockerBinary(), "run", "-d", "--name="+postgresContainer, "-p", "5432:5432",
		"-e", "POSTGRES_PASSWORD=psw", postgresImage); err != nil {
		return errors.Wrap(err, "starting postgres")
	}
	return sh.Run("sleep", "3")
}

// StopPostgres removes the container started by Postgres.
func StopPostgres() error {
	return sh.Run(dockerBinary(), "rm", "-f", postgresContainer)
}

// Migrate creates the metrics table using the default config.
func Migrate() error {
	return sh.RunV("go", "run", "./cmd/kafkametrics", "migrate")
}

// Tests runs unit tests only; database tests skip when no postgres is reachable.
func Tests() error {
	return sh.RunV("go", "test", "-v", "-coverprofile", "coverage.out", "./...")
}

// TestsWithDb runs the full suite against a throwaway postgres container.
func TestsWithDb() (err error) {
	mg.Deps(Postgres)
	defer func() {
		if stopErr := StopPostgres(); stopErr != nil {
			if err == nil {
				err = stopErr
			} else {
				err = fmt.Errorf("%w; %s", err, stopErr.Error())
			}
		}
	}()
	return Tests()
}

// Lint runs gofmt and go vet.
func Lint() error {
	out, err := sh.Output("gofmt", "-l", "cmd", "internal", "magefiles")
	if err != nil {
		return err
	}
	if out != "" {
		return errors.Errorf("files need formatting:\n%s", out)
	}
	return sh.RunV("go", "vet", "./...")
}

func dockerBinary() string {
	if path, err := exec.LookPath("docker"); err == nil {
		return path
	}
	return "podman"
}
