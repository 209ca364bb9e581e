// Command mptree inspects and rebuilds MessagePack buffers structurally:
// dump renders bytes as a tagged JSON document, build turns such a document
// back into bytes.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/mptree"
	"github.com/unkn0wn-root/mptree/form"
	zaplog "github.com/unkn0wn-root/mptree/log/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "mptree",
		Short:         "Inspect and rebuild MessagePack buffers structurally",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log decode diagnostics")

	var pretty bool
	dump := &cobra.Command{
		Use:   "dump [file]",
		Short: "Decode MessagePack bytes (file or stdin) and print the JSON document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			dec := mptree.Decoder{Logger: newLogger(verbose)}
			e, err := dec.Unpack(data)
			if err != nil {
				return err
			}
			doc, err := form.MarshalJSON(e, pretty)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), doc)
			return err
		},
	}
	dump.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")

	var outPath string
	build := &cobra.Command{
		Use:   "build [file]",
		Short: "Encode a JSON document (file or stdin) back to MessagePack bytes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			raw, err := form.PackJSON(string(doc))
			if err != nil {
				return err
			}
			if outPath != "" {
				return os.WriteFile(outPath, raw, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
	build.Flags().StringVarP(&outPath, "out", "o", "", "write bytes to a file instead of stdout")

	root.AddCommand(dump, build)
	return root
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(cmd.InOrStdin())
}

func newLogger(verbose bool) mptree.Logger {
	if !verbose {
		return mptree.NopLogger{}
	}
	zl, err := zap.NewDevelopment()
	if err != nil {
		return mptree.NopLogger{}
	}
	return zaplog.ZapLogger{L: zl}
}
