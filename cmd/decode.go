package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-resolver/framework/decode"
)

func newDecodeCommand(f *flags) *cobra.Command {
	var module, namespace, codec string
	var strict bool
	cmd := &cobra.Command{
		Use:   "decode <name> [file]",
		Short: "Decode a payload (file or stdin) as the named type and print it as canonical JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, args[1:])
			if err != nil {
				return err
			}
			a, err := bootstrap(cmd.Context(), f, true)
			if err != nil {
				return err
			}
			defer closeApp(cmd, a)

			d := a.Decoder()
			if codec != "" {
				c, err := decode.CodecByName(codec)
				if err != nil {
					return err
				}
				d = decode.New(c, a.Resolver())
			}
			var opts []decode.Option
			if strict {
				opts = append(opts, decode.Strict())
			}

			var v any
			if module != "" {
				v, err = d.DecodeInModule(payload, args[0], module, namespace, opts...)
			} else {
				v, err = d.DecodeName(payload, args[0], namespace, opts...)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", "restrict to one module")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "restrict to one namespace")
	cmd.Flags().StringVar(&codec, "codec", "", "json or yaml (default from configuration)")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject unknown fields")
	return cmd
}

func readPayload(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}
