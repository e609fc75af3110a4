package ghcommand

import (
	"github.com/bitrise-io/go-utils/v2/command"
)

const toolName = "gh"

// GistCreateParams ...
type GistCreateParams struct {
	// FileName is the name the uploaded file carries inside the gist. The
	// content itself arrives on standard input.
	FileName    string
	Description string
	Public      bool
}

// RepoCreateParams ...
type RepoCreateParams struct {
	Name        string
	SourceDir   string
	Description string
	Public      bool
	Push        bool
}

// Factory builds gh invocations as argument vectors. Optional flags are
// appended together with their value only when the value is set, so an
// empty option never turns into a stray empty argument.
type Factory interface {
	CreateGistCreate(params GistCreateParams, opts *command.Opts) command.Command
	CreateGistDelete(gistURL string, opts *command.Opts) command.Command
	CreateRepoCreate(params RepoCreateParams, opts *command.Opts) command.Command
	CreateRepoDelete(name string, opts *command.Opts) command.Command
	CreateCurrentLogin(opts *command.Opts) command.Command
	CreateVersion(opts *command.Opts) command.Command
	CreateAuthStatus(opts *command.Opts) command.Command
	IsAvailable() bool
}

type factory struct {
	cmdFactory command.Factory
}

// NewFactory ...
func NewFactory(cmdFactory command.Factory) Factory {
	return factory{cmdFactory: cmdFactory}
}

// CreateGistCreate builds `gh gist create` reading the content from standard
// input, the only form where --filename controls the in-gist file name.
func (f factory) CreateGistCreate(params GistCreateParams, opts *command.Opts) command.Command {
	args := []string{"gist", "create", "-", "--filename", params.FileName}
	if params.Description != "" {
		args = append(args, "--desc", params.Description)
	}
	if params.Public {
		args = append(args, "--public")
	}
	return f.cmdFactory.Create(toolName, args, opts)
}

// CreateGistDelete ...
func (f factory) CreateGistDelete(gistURL string, opts *command.Opts) command.Command {
	return f.cmdFactory.Create(toolName, []string{"gist", "delete", gistURL, "--yes"}, opts)
}

// CreateRepoCreate builds `gh repo create`. Exactly one visibility flag is
// always present, gh rejects a non-interactive create without one.
func (f factory) CreateRepoCreate(params RepoCreateParams, opts *command.Opts) command.Command {
	args := []string{"repo", "create", params.Name}
	if params.Public {
		args = append(args, "--public")
	} else {
		args = append(args, "--private")
	}
	if params.Description != "" {
		args = append(args, "--description", params.Description)
	}
	if params.SourceDir != "" {
		args = append(args, "--source", params.SourceDir)
	}
	if params.Push {
		args = append(args, "--push")
	}
	return f.cmdFactory.Create(toolName, args, opts)
}

// CreateRepoDelete ...
func (f factory) CreateRepoDelete(name string, opts *command.Opts) command.Command {
	return f.cmdFactory.Create(toolName, []string{"repo", "delete", name, "--yes"}, opts)
}

// CreateCurrentLogin builds the lookup of the authenticated user's login.
func (f factory) CreateCurrentLogin(opts *command.Opts) command.Command {
	return f.cmdFactory.Create(toolName, []string{"api", "user", "--jq", ".login"}, opts)
}

// CreateVersion ...
func (f factory) CreateVersion(opts *command.Opts) command.Command {
	return f.cmdFactory.Create(toolName, []string{"--version"}, opts)
}

// CreateAuthStatus ...
func (f factory) CreateAuthStatus(opts *command.Opts) command.Command {
	return f.cmdFactory.Create(toolName, []string{"auth", "status"}, opts)
}

// IsAvailable reports whether gh is on the PATH.
func (f factory) IsAvailable() bool {
	cmd := f.cmdFactory.Create("which", []string{toolName}, nil)
	_, err := cmd.RunAndReturnTrimmedCombinedOutput()
	return err == nil
}
