package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tcnksm/go-latest"
)

// Version is set at build time with -ldflags "-X cmdfix/internal/cli.Version=v1.2.3".
var Version = "dev"

// latestInfo is the part of a release check the command prints
type latestInfo struct {
	Current  string
	Outdated bool
}

var releaseRepo = &latest.GithubTag{
	Owner:      "cmdfix",
	Repository: "cmdfix",
}

func checkGithubRelease(current string) (latestInfo, error) {
	res, err := latest.Check(releaseRepo, current)
	if err != nil {
		return latestInfo{}, err
	}
	return latestInfo{Current: res.Current, Outdated: res.Outdated}, nil
}

func (a *app) versionCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintln(a.streams.Out, "cmdfix", Version)
			if !check {
				return nil
			}
			if Version == "dev" {
				fmt.Fprintln(a.streams.Out, "development build, skipping release check")
				return nil
			}

			res, err := a.checkLatest(Version)
			if err != nil {
				return fmt.Errorf("release check: %w", err)
			}
			if res.Outdated {
				fmt.Fprintf(a.streams.Out, "A new version is available: %s (you have %s)\n", res.Current, Version)
			} else {
				fmt.Fprintf(a.streams.Out, "You are using the latest version: %s\n", Version)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
