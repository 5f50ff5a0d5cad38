// Command diskkit is a small CLI over the configured storage backend.
// The backend and its settings come from DISKKIT_* environment
// variables; see the diskkit package Config.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gobeaver/diskkit"
	_ "github.com/gobeaver/diskkit/driver/gcs"
	_ "github.com/gobeaver/diskkit/driver/local"
	_ "github.com/gobeaver/diskkit/driver/memory"
	_ "github.com/gobeaver/diskkit/driver/minio"
	_ "github.com/gobeaver/diskkit/driver/s3"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// defaultDisk builds the disk selected by the environment.
func defaultDisk() (*diskkit.Disk, error) {
	cfg, err := diskkit.GetConfig()
	if err != nil {
		return nil, err
	}
	m, err := diskkit.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return m.Default()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "diskkit",
		Short:         "Unified blob storage CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLsCmd(),
		newCatCmd(),
		newPutCmd(),
		newRmCmd(),
		newCpCmd(),
		newMvCmd(),
		newStatCmd(),
		newURLCmd(),
		newSignCmd(),
	)
	return root
}

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List objects under a prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := defaultDisk()
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			for entry, err := range disk.FlatList(cmd.Context(), prefix) {
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), entry.Path)
			}
			return nil
		},
	}
}

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Stream an object to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := defaultDisk()
			if err != nil {
				return err
			}
			r, err := disk.GetStream(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer r.Close()
			_, err = io.Copy(cmd.OutOrStdout(), r)
			return err
		},
	}
}

func newPutCmd() *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "put <path> [file]",
		Short: "Write an object from a file or stdin",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := defaultDisk()
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 2 {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			var opts []diskkit.PutOption
			if contentType != "" {
				opts = append(opts, diskkit.WithContentType(contentType))
			}
			return disk.Put(cmd.Context(), args[0], in, opts...)
		},
	}
	cmd.Flags().StringVar(&contentType, "content-type", "", "MIME type for the object")
	return cmd
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := defaultDisk()
			if err != nil {
				return err
			}
			res, err := disk.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !res.WasDeleted {
				fmt.Fprintln(cmd.OutOrStdout(), "not found, nothing deleted")
			}
			return nil
		},
	}
}

func newCpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cp <src> <dst>",
		Short: "Copy an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := defaultDisk()
			if err != nil {
				return err
			}
			return disk.Copy(cmd.Context(), args[0], args[1])
		},
	}
}

func newMvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <src> <dst>",
		Short: "Move an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := defaultDisk()
			if err != nil {
				return err
			}
			err = disk.Move(cmd.Context(), args[0], args[1])
			if pm, ok := diskkit.IsPartialMove(err); ok {
				return fmt.Errorf("copy succeeded but source remains at %s: %w", pm.Src, pm.Err)
			}
			return err
		},
	}
}

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Show object size and modification time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := defaultDisk()
			if err != nil {
				return err
			}
			res, err := disk.Stat(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "size:     %d\nmodified: %s\n", res.Size, res.Modified.Format(time.RFC3339))
			return nil
		},
	}
}

func newURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <path>",
		Short: "Print the public URL for an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := defaultDisk()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), disk.URL(args[0]))
			return nil
		},
	}
}

func newSignCmd() *cobra.Command {
	var expiry time.Duration

	cmd := &cobra.Command{
		Use:   "sign <path>",
		Short: "Print a time-limited signed URL for an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := defaultDisk()
			if err != nil {
				return err
			}
			res, err := disk.SignedURL(cmd.Context(), args[0], expiry)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.SignedURL)
			return nil
		},
	}
	cmd.Flags().DurationVar(&expiry, "expiry", 15*time.Minute, "signed URL lifetime")
	return cmd
}
