package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/abdul-hamid-achik/hitcore/packages/capture"
	"github.com/abdul-hamid-achik/hitcore/packages/curl"
	"github.com/abdul-hamid-achik/hitcore/packages/http"
	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
)

var requestCmd = &cobra.Command{
	Use:     "request [METHOD] <url>",
	Aliases: []string{"req"},
	Short:   "Build, validate and send an HTTP request",
	Long: `Build an HTTP request, validate it and send it.

The method defaults to GET, or POST when a body is given. The method, URL,
protocol version, headers and body framing are validated before anything is
sent; the first problem found is reported and nothing goes on the wire.

{{name}}, {{$ENV}}, ${NAME} and ${NAME:-default} are resolved in the URL,
headers and body from the config variables, the .env file and the OS
environment.

Examples:
  hitcore request https://api.example.com/health
  hitcore request POST {{baseUrl}}/users -d '{"name":"ada"}' --json
  hitcore request PUT {{baseUrl}}/files/1 -d @payload.bin --http 1.0 --content-length
  hitcore request {{baseUrl}}/me -H "Authorization: Bearer {{API_TOKEN}}" --expect-status 200
  hitcore request {{baseUrl}}/users --schema users.schema.json --capture id=body:0.id
  hitcore request GET https://execute-api.us-east-1.amazonaws.com/items --aws-sigv4 us-east-1/execute-api
  hitcore request DELETE {{baseUrl}}/users/1 --dry-run
  hitcore request --from-curl "curl -u admin:{{PASSWORD}} https://api.example.com/admin"
  hitcore request POST {{baseUrl}}/users -d @user.json --dry-run --as-curl`,
	Args: cobra.MaximumNArgs(2),
	RunE: requestCommand,
}

var (
	headerFlags       []string
	dataFlag          string
	jsonFlag          bool
	httpVersionFlag   string
	contentLengthFlag bool
	expectStatusFlag  []int
	schemaFlag        string
	captureFlags      []string
	dryRunFlag        bool
	failFlag          bool
	timeoutFlag       time.Duration
	proxyFlag         string
	insecureFlag      bool
	noFollowFlag      bool
	rateFlag          float64
	requestIDFlag     string
	awsSigV4Flag      string
	fromCurlFlag      string
	asCurlFlag        bool

	// fromCurlCmd is the parsed --from-curl command of the current run.
	fromCurlCmd *curl.Command
)

func init() {
	f := requestCmd.Flags()

	addBuildFlags(f)
	f.BoolVar(&dryRunFlag, "dry-run", false, "Validate and print the request without sending it")
	f.BoolVar(&asCurlFlag, "as-curl", false, "With --dry-run, print the request as a curl command")
	f.StringVar(&awsSigV4Flag, "aws-sigv4", "", "Sign with AWS Signature v4 as region/service, credentials from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY")

	// Response flags
	f.StringArrayVar(&captureFlags, "capture", nil, "Capture a value as [name=]body|header|status|duration[:path] (repeatable)")
	f.BoolVar(&failFlag, "fail", getEnvBool("HITCORE_FAIL", false), "Exit 1 on 4xx and 5xx responses (env: HITCORE_FAIL)")

	addNetworkFlags(f)
	f.Float64Var(&rateFlag, "rate", getEnvFloat("HITCORE_RATE", 0), "Limit requests per second (env: HITCORE_RATE)")
}

// addBuildFlags registers the flags that shape and validate the request.
func addBuildFlags(f *pflag.FlagSet) {
	f.StringArrayVarP(&headerFlags, "header", "H", nil, "Header to send, as \"Name: value\" (repeatable)")
	f.StringVarP(&dataFlag, "data", "d", "", "Request body, or @file to read it from a file")
	f.BoolVar(&jsonFlag, "json", false, "Send the body as application/json")
	f.StringVar(&httpVersionFlag, "http", "", "Protocol version: 1.0, 1.1 or 2 (default from config)")
	f.BoolVar(&contentLengthFlag, "content-length", false, "Add a Content-Length header for the body")
	f.StringVar(&fromCurlFlag, "from-curl", "", "Start from a curl command line instead of METHOD and URL")
	f.IntSliceVar(&expectStatusFlag, "expect-status", nil, "Fail unless the response has one of these status codes")
	f.StringVar(&schemaFlag, "schema", "", "Fail unless the JSON response matches this JSON Schema file")
}

// addNetworkFlags registers the flags layered over the config's client options.
func addNetworkFlags(f *pflag.FlagSet) {
	f.DurationVar(&timeoutFlag, "timeout", 0, "Request timeout (e.g., 30s, 1m); overrides the config")
	f.StringVar(&proxyFlag, "proxy", getEnvString("HITCORE_PROXY", ""), "Proxy URL for HTTP requests (env: HITCORE_PROXY)")
	f.BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("HITCORE_INSECURE", false), "Disable SSL certificate validation (env: HITCORE_INSECURE)")
	f.BoolVar(&noFollowFlag, "no-follow", false, "Do not follow redirects")
	f.StringVar(&requestIDFlag, "request-id", "", "Stamp a generated request ID into this header")
}

func requestCommand(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(args)
	if err != nil {
		return err
	}

	if awsSigV4Flag != "" {
		req, err = signRequest(req)
		if err != nil {
			return err
		}
	}

	if dryRunFlag {
		if asCurlFlag {
			fmt.Fprintln(cmd.OutOrStdout(), curl.Format(req))
			return nil
		}
		current.formatter.FormatRequest(req)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := http.NewClient(clientOptions()...)
	resp, err := client.Do(ctx, req)
	if err != nil {
		return err
	}

	current.formatter.FormatResponse(resp)

	if len(captureFlags) > 0 {
		if err := captureValues(resp); err != nil {
			return err
		}
	}

	if failFlag && resp.StatusCode >= 400 {
		return report(ExitFailure, fmt.Errorf("server responded %s", resp.Status))
	}
	return nil
}

// buildRequest turns the arguments and flags into a validated request.
func buildRequest(args []string) (*http.Request, error) {
	r := current.resolver

	body, err := readBody(dataFlag)
	if err != nil {
		return nil, err
	}
	body = []byte(r.Resolve(string(body)))

	b, err := newBuilder(args, len(body) > 0)
	if err != nil {
		return nil, err
	}

	switch {
	case httpVersionFlag != "":
		b.VersionString(httpVersionFlag)
	case fromCurlCmd == nil || fromCurlCmd.Version == "":
		b.VersionString(current.cfg.Version)
	}

	for _, line := range headerFlags {
		name, value, err := http.ParseHeaderLine(r.Resolve(line))
		if err != nil {
			return nil, err
		}
		b.Header(name, value)
	}
	if jsonFlag {
		b.Header("Content-Type", "application/json")
		b.Header("Accept", "application/json")
	}
	if len(body) > 0 {
		b.Body(body)
	}
	if contentLengthFlag {
		b.ContentLength()
	}

	if len(expectStatusFlag) > 0 || schemaFlag != "" {
		exp := http.Expectation{Status: expectStatusFlag}
		if schemaFlag != "" {
			data, err := os.ReadFile(schemaFlag)
			if err != nil {
				return nil, &usageError{err: fmt.Errorf("reading schema: %w", err)}
			}
			exp.Schema = data
		}
		b.Expect(exp)
	}

	current.logger.Debug("building request", "args", args, "headers", len(headerFlags), "body", len(body))
	return b.Build()
}

// newBuilder starts from --from-curl or from the METHOD and URL arguments.
func newBuilder(args []string, hasBody bool) (*http.Builder, error) {
	r := current.resolver
	fromCurlCmd = nil

	if fromCurlFlag != "" {
		if len(args) > 0 {
			return nil, &usageError{err: fmt.Errorf("--from-curl cannot be combined with a METHOD or URL argument")}
		}
		c, err := curl.Parse(r.Resolve(fromCurlFlag))
		if err != nil {
			var re *reqerr.Error
			if errors.As(err, &re) {
				return nil, err
			}
			return nil, &usageError{err: fmt.Errorf("--from-curl: %w", err)}
		}
		fromCurlCmd = c
		return c.Builder(), nil
	}

	switch len(args) {
	case 0:
		return nil, &usageError{err: fmt.Errorf("a URL argument or --from-curl is required")}
	case 1:
		method := "GET"
		if hasBody {
			method = "POST"
		}
		return http.NewBuilder(method, r.Resolve(args[0])), nil
	default:
		return http.NewBuilder(strings.ToUpper(args[0]), r.Resolve(args[1])), nil
	}
}

func readBody(data string) ([]byte, error) {
	if !strings.HasPrefix(data, "@") {
		return []byte(data), nil
	}
	content, err := os.ReadFile(data[1:])
	if err != nil {
		return nil, &usageError{err: fmt.Errorf("reading body: %w", err)}
	}
	return content, nil
}

func signRequest(req *http.Request) (*http.Request, error) {
	region, service, ok := strings.Cut(awsSigV4Flag, "/")
	if !ok || region == "" || service == "" {
		return nil, &usageError{err: fmt.Errorf("--aws-sigv4 must be region/service, got %q", awsSigV4Flag)}
	}
	creds := http.AWSCredentials{
		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		Region:    region,
		Service:   service,
	}
	return http.SignAWS(req, creds, time.Now().UTC())
}

// clientOptions layers command line flags over the config file.
func clientOptions() []http.ClientOption {
	opts := current.cfg.ClientOptions()
	if timeoutFlag > 0 {
		opts = append(opts, http.WithTimeout(timeoutFlag))
	}
	if proxyFlag != "" {
		opts = append(opts, http.WithProxy(proxyFlag))
	}
	if insecureFlag || (fromCurlCmd != nil && fromCurlCmd.Insecure) {
		opts = append(opts, http.WithValidateSSL(false))
	}
	if fromCurlCmd != nil && fromCurlCmd.FollowRedirects {
		opts = append(opts, http.WithFollowRedirects(true))
	}
	if noFollowFlag {
		opts = append(opts, http.WithFollowRedirects(false))
	}
	if rateFlag > 0 {
		opts = append(opts, http.WithRateLimit(rateFlag, 1))
	}
	if requestIDFlag != "" {
		opts = append(opts, http.WithRequestID(requestIDFlag))
	}
	return append(opts, http.WithLogger(current.logger))
}

func captureValues(resp *http.Response) error {
	captures := make([]*capture.Capture, 0, len(captureFlags))
	for _, expr := range captureFlags {
		c, err := capture.Parse(expr)
		if err != nil {
			return &usageError{err: err}
		}
		captures = append(captures, c)
	}

	values := capture.ExtractAll(resp, captures)
	for name, value := range values {
		current.resolver.SetCapture("response", name, value)
	}
	current.formatter.FormatCaptures(values)

	if missing := len(captures) - len(values); missing > 0 {
		return report(ExitFailure, reqerr.Newf("%d capture(s) matched nothing", missing))
	}
	return nil
}
