package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docthemes/internal/connectors/filesystem"
	"github.com/custodia-labs/docthemes/internal/core/domain"
	"github.com/custodia-labs/docthemes/internal/core/ports/driving"
)

var (
	uploadWatch      bool
	uploadExtensions []string
	uploadHidden     bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [path...]",
	Short: "Upload files or folders to the answering service",
	Long: `Uploads files to the answering service for indexing. Folders are
walked recursively; hidden files are skipped unless --hidden is given.

With --watch the command keeps running and uploads files that are created
or changed in the given folders.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadWatch, "watch", "w", false, "keep watching folders for new files")
	uploadCmd.Flags().StringSliceVarP(&uploadExtensions, "ext", "e", nil, "only upload these extensions (e.g. pdf,docx)")
	uploadCmd.Flags().BoolVar(&uploadHidden, "hidden", false, "include hidden files")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	session, err := requireSession(cmd)
	if err != nil {
		return err
	}

	opts := filesystem.Options{Extensions: uploadExtensions, IncludeHidden: uploadHidden}
	files, err := filesystem.Collect(args, opts)
	if err != nil {
		return err
	}

	if len(files) > 0 {
		if err := uploadFiles(cmd, session, files); err != nil {
			return err
		}
	} else if !uploadWatch {
		return fmt.Errorf("%w: no files found", domain.ErrInvalidInput)
	}

	if !uploadWatch {
		return nil
	}
	return watchAndUpload(cmd, session, args, opts)
}

// uploadFiles sends one batch with a byte progress bar.
func uploadFiles(cmd *cobra.Command, session driving.SessionService, files []filesystem.File) error {
	bar := newUploadBar(cmd.ErrOrStderr(), filesystem.TotalSize(files), fmt.Sprintf("uploading %d files", len(files)))

	batch, err := filesystem.Open(files, func(r io.Reader) io.Reader { return io.TeeReader(r, bar) })
	if err != nil {
		return err
	}
	defer batch.Close()

	outcome, err := session.Upload(commandContext(cmd), batch.Files)
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	green := color.New(color.FgGreen).SprintFunc()
	cmd.Printf("%s %d files uploaded, %d documents available\n",
		green("✓"), outcome.Accepted, len(outcome.Documents))
	if outcome.Warning != nil {
		printWarning(cmd, outcome.Warning)
	}
	return nil
}

func watchAndUpload(cmd *cobra.Command, session driving.SessionService, roots []string, opts filesystem.Options) error {
	var folders []string
	for _, r := range roots {
		abs, err := filesystem.ResolvePath(r)
		if err != nil {
			return err
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			folders = append(folders, abs)
		}
	}
	if len(folders) == 0 {
		return errors.New("--watch needs at least one folder")
	}

	watcher, err := filesystem.NewWatcher(folders, opts, filesystem.DefaultDebounce)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	changes, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %d folders. Press Ctrl+C to stop.\n", len(folders))

	for batch := range changes {
		if err := uploadFiles(cmd, session, batch); err != nil {
			printWarning(cmd, err)
		}
	}
	return nil
}

func newUploadBar(w io.Writer, total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(isTerminal()),
	)
}
