package cli

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cmdfix/internal/shelllog"
)

func (a *app) recordCommand() *cobra.Command {
	var (
		rec  shelllog.Record
		path string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Append a command to the shell log (used by shell hooks)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = a.cfg.ShellLog
			}
			if rec.Shell == "" {
				rec.Shell = a.shellName().String()
			}
			rec.Time = time.Now()

			a.logger.Debug("recording command",
				zap.String("path", path),
				zap.String("command", rec.Command),
				zap.Int("exit_code", rec.ExitCode))
			return shelllog.Append(path, rec)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&rec.Command, "command", "", "command line that ran")
	fs.IntVar(&rec.ExitCode, "exit-code", 0, "its exit status")
	fs.StringVar(&rec.Stderr, "stderr", "", "its captured error output")
	fs.StringVar(&rec.Cwd, "cwd", "", "working directory it ran in")
	fs.StringVar(&rec.Shell, "shell", "", "shell it ran in")
	fs.StringVar(&path, "log", "", "shell log path (default: shell_log from config)")
	_ = cmd.MarkFlagRequired("command")
	return cmd
}
