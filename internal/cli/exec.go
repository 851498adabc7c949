package cli

import (
	"github.com/spf13/cobra"
)

func newExecCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <line>...",
		Short: "Run console command lines without entering the console",
		Long: "Run each argument as one console command line, in order, against the\n" +
			"configured store. Stops early at \"quit\".",
		Example: `  hbnb exec "create User"
  hbnb exec 'User.update("1234", {"first_name": "Betty"})' "count all"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, line := range args {
				if s.interp.Execute(line) {
					break
				}
			}
			return nil
		},
	}
}
