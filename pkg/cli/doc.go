/*
Package cli provides helpers shared by the bitmark commands.

Output Formatting:

Compilation results are written as JSON documents or as a text summary with
diagnostics:

	format, err := cli.ParseOutputFormat("text")
	if err != nil {
		return err
	}
	formatter := cli.NewFormatter(format, true)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Progress Reporting:

When many files are compiled, a progress bar is drawn on stderr:

	progress := cli.NewProgress(os.Stderr, len(files))
	// per finished file
	progress.Done(failed)
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
