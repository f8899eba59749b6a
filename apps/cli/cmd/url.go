package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitcore/packages/httpurl"
)

var urlCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Parse a URL and print its components",
	Long: `Parse an http or https URL with the same rules used for requests and
print its components. {{name}} and ${NAME} references are resolved first.

Examples:
  hitcore url "https://user@api.example.com:8443/v1/items?page=2#top"
  hitcore url "{{baseUrl}}/health" -o json`,
	Args: cobra.ExactArgs(1),
	RunE: urlCommand,
}

// urlParts is the printed form of a parsed URL.
type urlParts struct {
	Scheme     string              `json:"scheme"`
	User       string              `json:"user,omitempty"`
	Host       string              `json:"host"`
	Port       int                 `json:"port"`
	Path       string              `json:"path"`
	Query      []httpurl.QueryPair `json:"query,omitempty"`
	Fragment   string              `json:"fragment,omitempty"`
	Secure     bool                `json:"secure"`
	RequestURI string              `json:"requestUri"`
	String     string              `json:"url"`
}

func urlCommand(cmd *cobra.Command, args []string) error {
	raw := current.resolver.Resolve(args[0])
	current.logger.Debug("parsing url", "input", raw)

	u, err := httpurl.Parse(raw)
	if err != nil {
		return err
	}

	parts := urlParts{
		Scheme:     u.Scheme().String(),
		User:       u.User(),
		Host:       u.Host(),
		Port:       u.Port(),
		Path:       u.Path(),
		Query:      u.Query().Pairs(),
		Fragment:   u.Fragment(),
		Secure:     u.IsSecure(),
		RequestURI: u.RequestURI(),
		String:     u.String(),
	}

	out := cmd.OutOrStdout()
	if outputFlag == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(parts)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "scheme\t%s\n", parts.Scheme)
	if parts.User != "" {
		fmt.Fprintf(w, "user\t%s\n", parts.User)
	}
	fmt.Fprintf(w, "host\t%s\n", parts.Host)
	fmt.Fprintf(w, "port\t%d\n", parts.Port)
	fmt.Fprintf(w, "path\t%s\n", parts.Path)
	for _, p := range parts.Query {
		fmt.Fprintf(w, "query\t%s=%s\n", p.Key, p.Value)
	}
	if parts.Fragment != "" {
		fmt.Fprintf(w, "fragment\t%s\n", parts.Fragment)
	}
	fmt.Fprintf(w, "secure\t%t\n", parts.Secure)
	fmt.Fprintf(w, "request-uri\t%s\n", parts.RequestURI)
	return w.Flush()
}
