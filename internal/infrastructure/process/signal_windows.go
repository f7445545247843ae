//go:build windows

package process

import (
	"errors"
	"os"
	"os/exec"
)

func configureProcAttr(*exec.Cmd) {}

// Windows has no SIGTERM; terminate is a hard kill.
func terminate(p *os.Process) error {
	return kill(p)
}

func kill(p *os.Process) error {
	err := p.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
