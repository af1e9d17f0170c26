package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/urlkit/internal/errors"
	"github.com/vango-dev/urlkit/pkg/urlcodec"
)

// codecFlags override the codec section of urlkit.json.
type codecFlags struct {
	delimiter     string
	listSeparator string
}

func (f *codecFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.delimiter, "delimiter", "d", "", "Pair delimiter (default from config, else \"&\")")
	cmd.Flags().StringVarP(&f.listSeparator, "list-separator", "l", "", "Split values on this separator into lists")
}

// options returns the configured codec options followed by the flag
// overrides.
func (f *codecFlags) options(root *rootOptions) ([]urlcodec.Option, error) {
	cfg, err := root.loadConfig()
	if err != nil {
		return nil, err
	}
	opts := cfg.CodecOptions()
	if f.delimiter != "" {
		opts = append(opts, urlcodec.WithDelimiter(f.delimiter))
	}
	if f.listSeparator != "" {
		opts = append(opts, urlcodec.WithListSeparator(f.listSeparator))
	}
	return opts, nil
}

func parseCmd(root *rootOptions) *cobra.Command {
	var flags codecFlags

	cmd := &cobra.Command{
		Use:   "parse <url-or-query>",
		Short: "Parse a URL or query string into params",
		Long: `Parse the query of a full URL, a "?query#hash" suffix or a bare query
string and print the decoded params as JSON. The hash is printed under "#".`,
		Example: `  urlkit parse 'https://example.com/search?q=go%20lang&page=2#top'
  urlkit parse 'tags=a,b' --list-separator ,`,
		Args: exactArgs(1, "a URL or query string"),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(root)
			if err != nil {
				return err
			}
			out, err := urlcodec.ParseQueryParams(urlcodec.StringInput(args[0]), opts...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out.Params)
		},
	}

	flags.register(cmd)
	return cmd
}

func encodeCmd(root *rootOptions) *cobra.Command {
	var flags codecFlags

	cmd := &cobra.Command{
		Use:   "encode key=value...",
		Short: "Serialize key=value pairs into a query string",
		Long: `Serialize pairs into a "?query#hash" string. Repeating a key makes a list;
the key "#" sets the hash. Keys and values are percent-encoded.`,
		Example: `  urlkit encode q='go lang' tag=a tag=b '#=top'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("U081").
					WithDetail("encode needs at least one key=value pair").
					WithSuggestion("Run 'urlkit encode q=golang'")
			}
			params, err := pairsToParams(args)
			if err != nil {
				return err
			}
			opts, err := flags.options(root)
			if err != nil {
				return err
			}
			out, err := urlcodec.ParseQueryParams(urlcodec.MapInput{Params: params}, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Query)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// pairsToParams builds a map from key=value arguments in argument order.
func pairsToParams(pairs []string) (*urlcodec.QueryParamMap, error) {
	params := urlcodec.NewQueryParamMap()
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.New("U080").
				WithInput(pair, len(key)+1).
				WithDetail(fmt.Sprintf("%q is not a key=value pair", pair)).
				WithSuggestion("Write pairs as key=value, e.g. page=2")
		}
		params.Add(key, value)
	}
	return params, nil
}

func segmentsCmd(root *rootOptions) *cobra.Command {
	var flags codecFlags

	cmd := &cobra.Command{
		Use:     "segments <url>",
		Short:   "Decompose a URL into its segments",
		Example: `  urlkit segments 'https://example.com:8443/docs/?tab=api#intro'`,
		Args:    exactArgs(1, "a URL"),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(root)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), urlcodec.GetURLSegments(args[0], opts...))
		},
	}

	flags.register(cmd)
	return cmd
}

// checkResult is printed by the check command.
type checkResult struct {
	IsIPAddress bool `json:"isIpAddress"`
	IsURL       bool `json:"isUrl"`
}

func checkCmd(root *rootOptions) *cobra.Command {
	var (
		onlyLocalhost          bool
		includeLocalhostDomain bool
		allowOnlyPathname      bool
	)

	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Report whether a URL is an IP address and whether it is a URL",
		Example: `  urlkit check http://192.168.1.10:3000
  urlkit check /docs --allow-only-pathname=false`,
		Args: exactArgs(1, "a URL"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("include-localhost-domain") {
				includeLocalhostDomain = cfg.Codec.IncludeLocalhostDomain
			}
			if !cmd.Flags().Changed("allow-only-pathname") {
				allowOnlyPathname = cfg.Codec.AllowOnlyPathname
			}

			return printJSON(cmd.OutOrStdout(), checkResult{
				IsIPAddress: urlcodec.IsIPAddress(args[0],
					urlcodec.OnlyLocalhost(onlyLocalhost),
					urlcodec.IncludeLocalhostDomain(includeLocalhostDomain),
				),
				IsURL: urlcodec.IsURL(args[0], urlcodec.AllowOnlyPathname(allowOnlyPathname)),
			})
		},
	}

	cmd.Flags().BoolVar(&onlyLocalhost, "only-localhost", false, "Accept only loopback and private IPv4 hosts")
	cmd.Flags().BoolVar(&includeLocalhostDomain, "include-localhost-domain", true, "With --only-localhost, accept domains containing \"localhost\"")
	cmd.Flags().BoolVar(&allowOnlyPathname, "allow-only-pathname", true, "Accept relative paths as URLs")

	return cmd
}
