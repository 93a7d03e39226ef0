package cmd

import (
	"github.com/spf13/cobra"

	kernel "github.com/km-arc/go-resolver/framework/app"
	"github.com/km-arc/go-resolver/framework/factory"
	"github.com/km-arc/go-resolver/framework/http/api"
)

type resolution struct {
	Type       api.TypeInfo `json:"type"`
	Repository string       `json:"repository"`
	Service    string       `json:"service"`
}

func newResolveCommand(f *flags) *cobra.Command {
	var module, namespace string
	cmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Resolve a type name and show the container keys it maps to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), f, true)
			if err != nil {
				return err
			}
			defer closeApp(cmd, a)

			var opts []factory.Option
			if module != "" {
				opts = append(opts, factory.InModule(module))
			}
			if namespace != "" {
				opts = append(opts, factory.InNamespace(namespace))
			}
			res, err := resolveName(a, args[0], opts...)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", "restrict to one module")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "restrict to one namespace")
	return cmd
}

// resolveName goes through the application's configured factories, so the
// lookups are logged and counted like any other resolution.
func resolveName(a *kernel.Application, name string, opts ...factory.Option) (resolution, error) {
	repo, err := a.RepositoryFactory().Get(factory.RepositoryShape, name, opts...)
	if err != nil {
		return resolution{}, err
	}
	svc, err := a.Services().GetByName(name, opts...)
	if err != nil {
		return resolution{}, err
	}
	return resolution{
		Type:       api.Describe(repo.Entity),
		Repository: repo.Key(),
		Service:    svc.Key(),
	}, nil
}
