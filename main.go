package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bitrise-io/go-utils/colorstring"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/urfave/cli/v3"

	"github.com/loghoist/loghoist/command/ghcommand"
	"github.com/loghoist/loghoist/command/gitcommand"
	"github.com/loghoist/loghoist/upload"
)

func main() {
	logger := log.NewLogger()

	if err := newRootCommand(logger).Run(context.Background(), os.Args); err != nil {
		logger.Errorf("%s", err)
		os.Exit(1)
	}
}

func newRootCommand(logger log.Logger) *cli.Command {
	return &cli.Command{
		Name:      "loghoist",
		Usage:     "Upload a log file to GitHub, as a gist or, when it is too big, as a repository",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "public",
				Usage:   "Make the gist or repository publicly visible",
				Sources: cli.EnvVars("LOGHOIST_PUBLIC"),
			},
			&cli.StringFlag{
				Name:    "description",
				Aliases: []string{"d"},
				Usage:   "Description attached to the gist or repository",
				Sources: cli.EnvVars("LOGHOIST_DESCRIPTION"),
			},
			&cli.BoolFlag{
				Name:  "gist",
				Usage: "Force a gist upload regardless of file size, disabling the repository fallback",
			},
			&cli.BoolFlag{
				Name:  "repo",
				Usage: "Force a repository upload regardless of file size",
			},
			&cli.BoolFlag{
				Name:  "auto",
				Usage: "Keep the size-based decision (the default, spelled out)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve the strategy and names, upload nothing",
			},
			&cli.BoolFlag{
				Name:    "compress",
				Usage:   "Stage a zstd-compressed copy, repository uploads only",
				Sources: cli.EnvVars("LOGHOIST_COMPRESS"),
			},
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "Probe the resulting URL with a HEAD request after the upload",
			},
			&cli.StringFlag{
				Name:    "mirror-bucket",
				Usage:   "S3 bucket for a best-effort mirror copy",
				Sources: cli.EnvVars("LOGHOIST_MIRROR_BUCKET"),
			},
			&cli.StringFlag{
				Name:    "mirror-prefix",
				Usage:   "Key prefix inside the mirror bucket",
				Sources: cli.EnvVars("LOGHOIST_MIRROR_PREFIX"),
			},
			&cli.StringFlag{
				Name:    "mirror-region",
				Usage:   "AWS region of the mirror bucket",
				Sources: cli.EnvVars("LOGHOIST_MIRROR_REGION", "AWS_REGION"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("LOGHOIST_VERBOSE"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(cmd, logger)
		},
	}
}

func run(cmd *cli.Command, logger log.Logger) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one FILE argument, got %d", cmd.Args().Len())
	}
	if cmd.Bool("gist") && cmd.Bool("repo") {
		return fmt.Errorf("--gist and --repo are mutually exclusive")
	}

	logger.EnableDebugLog(cmd.Bool("verbose"))

	envRepo := env.NewRepository()
	cmdFactory := command.NewFactory(envRepo)

	if !cmd.Bool("dry-run") {
		if err := checkCLITools(ghcommand.NewFactory(cmdFactory), gitcommand.NewFactory(cmdFactory), logger, cmd.Bool("gist"), cmd.Bool("verbose")); err != nil {
			return err
		}
	}

	uploader := upload.NewUploader(
		envRepo,
		logger,
		cmdFactory,
		pathutil.NewPathProvider(),
		pathutil.NewPathChecker(),
		fileutil.NewFileManager(),
	)

	result, err := uploader.UploadLog(upload.Options{
		FilePath:              cmd.Args().First(),
		Description:           cmd.String("description"),
		IsPublic:              cmd.Bool("public"),
		OnlyGist:              cmd.Bool("gist"),
		OnlyRepository:        cmd.Bool("repo"),
		Auto:                  cmd.Bool("auto"),
		DryMode:               cmd.Bool("dry-run"),
		Compress:              cmd.Bool("compress"),
		Verify:                cmd.Bool("verify"),
		Verbose:               cmd.Bool("verbose"),
		MirrorBucket:          cmd.String("mirror-bucket"),
		MirrorKeyPrefix:       cmd.String("mirror-prefix"),
		MirrorRegion:          cmd.String("mirror-region"),
		MirrorAccessKeyID:     envRepo.Get("AWS_ACCESS_KEY_ID"),
		MirrorSecretAccessKey: envRepo.Get("AWS_SECRET_ACCESS_KEY"),
	})
	if err != nil {
		return err
	}

	logger.Println()
	if result.DryMode {
		logger.Donef("Dry run finished, nothing was uploaded")
		return nil
	}
	fmt.Println(colorstring.Green(result.URL))
	return nil
}

// checkCLITools fails early with an actionable message when a required CLI is
// missing or gh is unauthenticated, instead of surfacing a mid-upload
// subprocess error. git is only needed when a repository upload can happen,
// gist-only runs skip that check.
func checkCLITools(ghFactory ghcommand.Factory, gitFactory gitcommand.Factory, logger log.Logger, gistOnly bool, verbose bool) error {
	if !ghFactory.IsAvailable() {
		return fmt.Errorf("the gh CLI was not found on PATH, install it from https://cli.github.com")
	}
	if !gistOnly && !gitFactory.IsAvailable() {
		return fmt.Errorf("the git CLI was not found on PATH, install it from https://git-scm.com")
	}

	if verbose {
		versionCmd := ghFactory.CreateVersion(nil)
		if out, err := versionCmd.RunAndReturnTrimmedOutput(); err == nil {
			logger.Debugf("%s", out)
		}
	}

	authCmd := ghFactory.CreateAuthStatus(nil)
	if out, err := authCmd.RunAndReturnTrimmedCombinedOutput(); err != nil {
		return fmt.Errorf("gh is not authenticated, run gh auth login or set GH_TOKEN: %s", out)
	}
	return nil
}
