package gitcommand

import (
	"github.com/bitrise-io/go-utils/v2/command"
)

const toolName = "git"

// Factory builds git invocations as argument vectors. The repository to act
// on is selected through opts.Dir.
type Factory interface {
	CreateInit(opts *command.Opts) command.Command
	CreateRenameBranch(branch string, opts *command.Opts) command.Command
	CreateAddAll(opts *command.Opts) command.Command
	CreateCommit(message string, opts *command.Opts) command.Command
	IsAvailable() bool
}

type factory struct {
	cmdFactory command.Factory
}

// NewFactory ...
func NewFactory(cmdFactory command.Factory) Factory {
	return factory{cmdFactory: cmdFactory}
}

// CreateInit ...
func (f factory) CreateInit(opts *command.Opts) command.Command {
	return f.cmdFactory.Create(toolName, []string{"init"}, opts)
}

// CreateRenameBranch builds `git branch -M`, which also renames the unborn
// branch of a fresh init.
func (f factory) CreateRenameBranch(branch string, opts *command.Opts) command.Command {
	return f.cmdFactory.Create(toolName, []string{"branch", "-M", branch}, opts)
}

// CreateAddAll ...
func (f factory) CreateAddAll(opts *command.Opts) command.Command {
	return f.cmdFactory.Create(toolName, []string{"add", "."}, opts)
}

// CreateCommit ...
func (f factory) CreateCommit(message string, opts *command.Opts) command.Command {
	return f.cmdFactory.Create(toolName, []string{"commit", "-m", message}, opts)
}

// IsAvailable reports whether git is on the PATH.
func (f factory) IsAvailable() bool {
	cmd := f.cmdFactory.Create("which", []string{toolName}, nil)
	_, err := cmd.RunAndReturnTrimmedCombinedOutput()
	return err == nil
}
