//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the test suite with the race detector.
func (Run) Tests() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Prints the header and type reader table of a container.
func (Run) Inspect(file string) error {
	mg.Deps(Build.Binary)
	fmt.Println("Inspect", file)
	_, err := executeCmd("bin/anima-content", withArgs("inspect", file), withStream())
	return err
}
