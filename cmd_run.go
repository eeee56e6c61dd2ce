package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wyg1997/tino/internal/domain"
)

var (
	runInput   string
	runCFlags  []string
	runOptions []string
	runArgs    []string
)

var runCmd = &cobra.Command{
	Use:   "run <language> [file]",
	Short: "Run a file on tio.run",
	Long: `Runs the file (or stdin when no file is given) through the same request
handling as chat commands and prints the reply.

Examples:
  tino run python3 hello.py
  echo 'echo hi' | tino run bash
  tino run c-gcc main.c --cflag -O2 --input "5" --arg a --arg b`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "text passed to the program on stdin")
	runCmd.Flags().StringArrayVar(&runCFlags, "cflag", nil, "compiler flag (repeatable)")
	runCmd.Flags().StringArrayVar(&runOptions, "option", nil, "interpreter option (repeatable)")
	runCmd.Flags().StringArrayVar(&runArgs, "arg", nil, "command-line argument for the program (repeatable)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	var src io.Reader = os.Stdin
	if len(args) == 2 {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	code, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read code: %w", err)
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := newTioClient(cfg, log)
	if err != nil {
		return err
	}
	a, langCache, err := bootstrap(ctx, cfg, client, log)
	if err != nil {
		return err
	}
	defer langCache.Close()

	reply := a.Executor.Run(ctx, domain.ExecutionRequest{
		LanguageID:    args[0],
		SourceCode:    string(code),
		Input:         runInput,
		CompilerFlags: runCFlags,
		Options:       runOptions,
		Args:          runArgs,
	})
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}
