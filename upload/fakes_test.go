package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
)

type fakeEnvRepo struct {
	envVars map[string]string
}

func (repo fakeEnvRepo) Get(key string) string {
	value, ok := repo.envVars[key]
	if ok {
		return value
	}
	return ""
}

func (repo fakeEnvRepo) Set(key, value string) error {
	repo.envVars[key] = value
	return nil
}

func (repo fakeEnvRepo) Unset(key string) error {
	repo.envVars[key] = ""
	return nil
}

func (repo fakeEnvRepo) List() []string {
	envs := []string{}
	for k, v := range repo.envVars {
		envs = append(envs, fmt.Sprintf("%s=%s", k, v))
	}
	return envs
}

// fakeResponse scripts the outcome of commands whose printable form starts
// with argsPrefix.
type fakeResponse struct {
	argsPrefix string
	stdout     string
	stderr     string
	err        error
}

type fakeCommandFactory struct {
	responses []fakeResponse
	calls     []string
}

func (f *fakeCommandFactory) Create(name string, args []string, opts *command.Opts) command.Command {
	printable := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, printable)
	for _, response := range f.responses {
		if strings.HasPrefix(printable, response.argsPrefix) {
			return fakeCommand{
				printable: printable,
				opts:      opts,
				stdout:    response.stdout,
				stderr:    response.stderr,
				err:       response.err,
			}
		}
	}
	return fakeCommand{printable: printable, opts: opts}
}

func (f *fakeCommandFactory) callsWithPrefix(prefix string) []string {
	var matched []string
	for _, call := range f.calls {
		if strings.HasPrefix(call, prefix) {
			matched = append(matched, call)
		}
	}
	return matched
}

type fakeCommand struct {
	printable string
	opts      *command.Opts
	stdout    string
	stderr    string
	err       error
}

func (c fakeCommand) PrintableCommandArgs() string { return c.printable }

func (c fakeCommand) Run() error {
	if c.opts != nil && c.opts.Stdout != nil {
		fmt.Fprint(c.opts.Stdout, c.stdout)
	}
	if c.opts != nil && c.opts.Stderr != nil {
		fmt.Fprint(c.opts.Stderr, c.stderr)
	}
	return c.err
}

func (c fakeCommand) RunAndReturnExitCode() (int, error) {
	if c.err != nil {
		return 1, c.err
	}
	return 0, nil
}

func (c fakeCommand) RunAndReturnTrimmedOutput() (string, error) {
	return strings.TrimSpace(c.stdout), c.err
}

func (c fakeCommand) RunAndReturnTrimmedCombinedOutput() (string, error) {
	return strings.TrimSpace(c.stdout + c.stderr), c.err
}

func (c fakeCommand) Start() error { return c.err }
func (c fakeCommand) Wait() error  { return nil }

// fakePathProvider hands out scratch directories under a known root so tests
// can inspect them.
type fakePathProvider struct {
	root string
}

func (f fakePathProvider) CreateTempDir(prefix string) (string, error) {
	dir := filepath.Join(f.root, prefix)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

func newTestUploader(cmdFactory *fakeCommandFactory, scratchRoot string) *Uploader {
	return NewUploader(
		fakeEnvRepo{envVars: map[string]string{}},
		log.NewLogger(),
		cmdFactory,
		fakePathProvider{root: scratchRoot},
		pathutil.NewPathChecker(),
		fileutil.NewFileManager(),
	)
}
