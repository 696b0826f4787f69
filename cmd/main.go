package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/dsoprea/go-logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ha1tch/cocofs/cmd/add"
	"github.com/ha1tch/cocofs/cmd/create"
	"github.com/ha1tch/cocofs/cmd/delete"
	"github.com/ha1tch/cocofs/cmd/extract"
	"github.com/ha1tch/cocofs/cmd/gmap"
	"github.com/ha1tch/cocofs/cmd/info"
	"github.com/ha1tch/cocofs/cmd/list"
)

// imageEnv names the variable that supplies the image when --image is not
// given.
const imageEnv = "COCOFS_IMAGE"

const logFormat = "{{.Noun}}: [{{.Level}}] {{.Message}}"

type globalFlags struct {
	image   string
	verbose bool
	quiet   bool
}

// configureLogging sets the level for every package logger. It must run
// before anything logs, since loggers keep the level they first see.
func configureLogging(g *globalFlags) {
	scp := log.NewStaticConfigurationProvider()
	scp.SetFormat(logFormat)
	switch {
	case g.verbose:
		scp.SetLevelName(log.LevelNameDebug)
	case g.quiet:
		scp.SetLevelName(log.LevelNameError)
	default:
		scp.SetLevelName(log.LevelNameWarning)
	}
	log.LoadConfiguration(scp)
}

func (g *globalFlags) imagePath() (string, error) {
	if g.image != "" {
		return g.image, nil
	}
	if p := os.Getenv(imageEnv); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("no disk image given: use --image or set %s", imageEnv)
}

// normalizeFlag accepts --no_clobber for --no-clobber and the like.
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newRootCommand(fs afero.Fs, out, errOut io.Writer) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "cocofs",
		Short:         "Manipulate CoCo DOS floppy disk images",
		Long:          "Create, list, check and copy files in and out of 35-track Color Computer DOS disk images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogging(g)
		},
	}
	root.SetGlobalNormalizationFunc(normalizeFlag)
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVarP(&g.image, "image", "i", "", "disk image path (default $"+imageEnv+")")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log debug output")
	root.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "suppress non-error output")

	// format
	var noClobber bool
	formatCmd := &cobra.Command{
		Use:     "format",
		Aliases: []string{"create"},
		Short:   "Create an empty disk image, replacing any existing one",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := g.imagePath()
			if err != nil {
				return err
			}
			opts := create.DefaultCreateOptions()
			opts.Fs, opts.Out, opts.Quiet = fs, out, g.quiet
			opts.NoClobber = noClobber
			return create.Create(path, opts)
		},
	}
	formatCmd.Flags().BoolVar(&noClobber, "no-clobber", false, "refuse to replace an existing image")

	// ls
	listOpts := list.DefaultListOptions()
	lsCmd := &cobra.Command{
		Use:     "ls [file...]",
		Aliases: []string{"list"},
		Short:   "List files and free space",
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := g.imagePath()
			if err != nil {
				return err
			}
			listOpts.Fs, listOpts.Out, listOpts.Err = fs, out, errOut
			return list.List(path, args, listOpts)
		},
	}
	lsCmd.Flags().BoolVar(&listOpts.JSON, "json", false, "output JSON")
	lsCmd.Flags().BoolVarP(&listOpts.Long, "long", "l", false, "show granule usage")
	lsCmd.Flags().StringVar(&listOpts.Sort, "sort", "none", "sort by none, name, size or type")
	lsCmd.Flags().BoolVarP(&listOpts.Reverse, "reverse", "r", false, "reverse the order")
	lsCmd.Flags().StringVar(&listOpts.Pattern, "pattern", "*", "only list names matching this glob")

	// copyin
	var addDir string
	copyinCmd := &cobra.Command{
		Use:     "copyin file[qualifiers]...",
		Aliases: []string{"add"},
		Short:   "Copy host files into the image",
		Long: "Copy host files into the image. A file may be followed by [type,encoding] " +
			"qualifiers, e.g. NOTES.TXT[data,ascii]. Types: Basic, Data, Code, Text. Encodings: Binary, ASCII.",
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := g.imagePath()
			if err != nil {
				return err
			}
			opts := add.DefaultAddOptions()
			opts.Fs, opts.Out, opts.Quiet = fs, out, g.quiet
			if addDir != "" {
				return add.AddAll(path, addDir, opts)
			}
			return add.Add(path, args, opts)
		},
	}
	copyinCmd.Flags().StringVar(&addDir, "dir", "", "add every file in this host directory")

	// copyout
	extractOpts := extract.DefaultExtractOptions()
	var extractAll bool
	copyoutCmd := &cobra.Command{
		Use:     "copyout file...",
		Aliases: []string{"extract"},
		Short:   "Copy files out of the image",
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := g.imagePath()
			if err != nil {
				return err
			}
			extractOpts.Fs, extractOpts.Out, extractOpts.Err = fs, out, errOut
			extractOpts.Quiet = g.quiet
			if extractAll {
				return extract.ExtractAll(path, extractOpts)
			}
			return extract.Extract(path, args, extractOpts)
		},
	}
	copyoutCmd.Flags().StringVarP(&extractOpts.OutputDir, "output", "o", ".", "directory to write files to")
	copyoutCmd.Flags().BoolVar(&extractOpts.Overwrite, "overwrite", true, "replace existing host files")
	copyoutCmd.Flags().BoolVarP(&extractAll, "all", "a", false, "extract every file")

	// rm
	deleteOpts := delete.DefaultDeleteOptions()
	var deleteAll bool
	rmCmd := &cobra.Command{
		Use:     "rm file...",
		Aliases: []string{"delete"},
		Short:   "Remove files from the image",
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := g.imagePath()
			if err != nil {
				return err
			}
			deleteOpts.Fs, deleteOpts.Out = fs, out
			deleteOpts.Quiet = g.quiet
			if deleteAll {
				return delete.DeleteAll(path, deleteOpts)
			}
			return delete.Delete(path, args, deleteOpts)
		},
	}
	rmCmd.Flags().BoolVarP(&deleteOpts.Interactive, "interactive", "I", false, "ask before each file")
	rmCmd.Flags().BoolVar(&deleteAll, "all", false, "remove every file")

	// dump
	infoOpts := info.DefaultInfoOptions()
	dumpCmd := &cobra.Command{
		Use:     "dump",
		Aliases: []string{"info", "check"},
		Short:   "Show every file's granule chain and check the image",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := g.imagePath()
			if err != nil {
				return err
			}
			infoOpts.Fs, infoOpts.Out = fs, out
			return info.Info(path, infoOpts)
		},
	}
	dumpCmd.Flags().BoolVar(&infoOpts.JSON, "json", false, "output JSON")
	dumpCmd.Flags().BoolVar(&infoOpts.Strict, "strict", false, "exit with an error when problems are found")
	dumpCmd.Flags().BoolVar(&infoOpts.ShowFree, "free-slots", true, "list unused directory slots")
	dumpCmd.Flags().BoolVar(&infoOpts.Verbose, "details", false, "print disk geometry first")

	// gmap
	gmapOpts := gmap.DefaultGmapOptions()
	gmapCmd := &cobra.Command{
		Use:   "gmap",
		Short: "Show the granule map",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := g.imagePath()
			if err != nil {
				return err
			}
			gmapOpts.Fs, gmapOpts.Out = fs, out
			return gmap.Gmap(path, gmapOpts)
		},
	}
	gmapCmd.Flags().BoolVar(&gmapOpts.Text, "text", false, "print the map instead of drawing it")

	root.AddCommand(formatCmd, lsCmd, copyinCmd, copyoutCmd, rmCmd, dumpCmd, gmapCmd)
	return root
}

func main() {
	log.AddAdapter("console", log.NewConsoleLogAdapter())

	root := newRootCommand(afero.NewOsFs(), os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
