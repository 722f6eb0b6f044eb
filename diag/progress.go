package diag

import "github.com/schollz/progressbar/v3"

/// NewLoaderProgress renders the loader thread's admission progress
/// (spec §4.7: "for each sorted entry, wait... load... add it to the
/// scheduler") as a terminal progress bar, one tick per admitted process.
func NewLoaderProgress(numProcesses int) *progressbar.ProgressBar {
	return progressbar.NewOptions(numProcesses,
		progressbar.OptionSetDescription("admitting processes"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
}
