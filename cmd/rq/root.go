package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "rq [flags] FILE...",
	Short:   "rq runs .rq HTTP test/scripting files and reports the outcome",
	Version: version,
	Args:    cobra.ArbitraryArgs,
	RunE:    runRQ,
}

// Flag-bound variables. cobra owns the flag parsing; viper layers
// .rqrc/environment defaults underneath it (SPEC_FULL.md AMBIENT STACK
// "Configuration", grounded on the cobra+viper pairing declared in
// antflydb-antfly-go/evalaf's go.mod — that repo lists viper but never
// calls into it itself, so the BindPFlag/ReadInConfig wiring below
// follows viper's own documented integration pattern rather than a
// concrete usage site in the pack).
var (
	flagTest           []string
	flagGlob           string
	flagFileRoot       string
	flagParallel       bool
	flagJobs           int
	flagFromEntry      int
	flagToEntry        int
	flagVariable       []string
	flagVariablesFile  string
	flagSecret         []string
	flagSecretsFile    string
	flagReportHTML     string
	flagReportJSON     string
	flagReportJUnit    string
	flagReportTAP      string
	flagCookiesInput   string
	flagCookiesOutput  string
	flagJSON           bool
	flagNoOutput       bool
	flagOutput         string
	flagInclude        string
	flagPretty         bool
	flagNoPretty       bool
	flagColor          bool
	flagNoColor        bool
	flagContinueOnErr  bool
	flagVerbose        bool
	flagVeryVerbose    bool

	// spec.md §4.8 option defaults, also settable globally from the CLI.
	flagInsecure         bool
	flagLocation         bool
	flagLocationTrusted  bool
	flagMaxRedirs        int
	flagConnectTimeout   string
	flagMaxTime          string
	flagRetry            int64
	flagRetryInterval    string
	flagRepeat           int64
	flagCompressed       bool
	flagProxy            string
	flagUnixSocket       string
	flagNetrc            bool
	flagNetrcFile        string
	flagNetrcOptional    bool
	flagIPv4             bool
	flagIPv6             bool
	flagLimitRate        int64
	flagCACert           string
	flagCert             string
	flagKey              string
	flagUser             string
)

func init() {
	flags := rootCmd.Flags()

	flags.StringSliceVar(&flagTest, "test", nil, "script file to run (repeatable), in addition to positional args")
	flags.StringVar(&flagGlob, "glob", "", "glob pattern selecting script files")
	flags.StringVar(&flagFileRoot, "file-root", ".", "base directory for relative file references inside scripts")
	flags.BoolVar(&flagParallel, "parallel", false, "run files across a worker pool instead of sequentially")
	flags.IntVar(&flagJobs, "jobs", 1, "number of parallel workers when --parallel is set")
	flags.IntVar(&flagFromEntry, "from-entry", 0, "first entry to run (1-based, 0 = first)")
	flags.IntVar(&flagToEntry, "to-entry", 0, "last entry to run (1-based, 0 = last)")
	flags.StringSliceVar(&flagVariable, "variable", nil, "name=value variable definition (repeatable)")
	flags.StringVar(&flagVariablesFile, "variables-file", "", "file of name=value variable definitions")
	flags.StringSliceVar(&flagSecret, "secret", nil, "name=value secret variable definition (repeatable)")
	flags.StringVar(&flagSecretsFile, "secrets-file", "", "file of name=value secret variable definitions")
	flags.StringVar(&flagReportHTML, "report-html", "", "write an HTML report to this directory")
	flags.StringVar(&flagReportJSON, "report-json", "", "write a JSON report to this directory")
	flags.StringVar(&flagReportJUnit, "report-junit", "", "write a JUnit XML report to this file")
	flags.StringVar(&flagReportTAP, "report-tap", "", "write a TAP report to this file")
	flags.StringVar(&flagCookiesInput, "cookies-input", "", "read the cookie jar from this Netscape cookie file before running")
	flags.StringVar(&flagCookiesOutput, "cookies-output", "", "write the final cookie jar to this Netscape cookie file after running")
	flags.BoolVar(&flagJSON, "json", false, "structured stdout instead of text")
	flags.BoolVar(&flagNoOutput, "no-output", false, "suppress stdout output entirely")
	flags.StringVar(&flagOutput, "output", "", "write stdout output to this file instead of the terminal")
	flags.StringVar(&flagInclude, "include", "", "glob pattern (matched against the base name) restricting which script files actually run")
	flags.BoolVar(&flagPretty, "pretty", true, "pretty-print structured output")
	flags.BoolVar(&flagNoPretty, "no-pretty", false, "disable pretty-printing of structured output")
	flags.BoolVar(&flagColor, "color", true, "colorize text output")
	flags.BoolVar(&flagNoColor, "no-color", false, "disable colorized text output")
	flags.BoolVar(&flagContinueOnErr, "continue-on-error", false, "keep running remaining entries in a file after a failure")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
	flags.BoolVar(&flagVeryVerbose, "very-verbose", false, "very verbose logging, including full request/response dumps")

	flags.BoolVar(&flagInsecure, "insecure", false, "disable TLS certificate verification")
	flags.BoolVar(&flagLocation, "location", true, "follow redirects")
	flags.BoolVar(&flagLocationTrusted, "location-trusted", false, "follow redirects, resending auth headers to the new host")
	flags.IntVar(&flagMaxRedirs, "max-redirs", 50, "maximum number of redirects to follow")
	flags.StringVar(&flagConnectTimeout, "connect-timeout", "", "connection timeout (e.g. 5s, 500ms)")
	flags.StringVar(&flagMaxTime, "max-time", "", "overall request timeout (e.g. 30s)")
	flags.Int64Var(&flagRetry, "retry", 0, "retry budget per entry (-1 infinite, 0 none, n finite)")
	flags.StringVar(&flagRetryInterval, "retry-interval", "", "delay between retries (e.g. 1s)")
	flags.Int64Var(&flagRepeat, "repeat", 1, "number of times to repeat each entry (-1 infinite, 0 skip)")
	flags.BoolVar(&flagCompressed, "compressed", false, "request a compressed response")
	flags.StringVar(&flagProxy, "proxy", "", "HTTP/HTTPS proxy URL")
	flags.StringVar(&flagUnixSocket, "unix-socket", "", "connect via this unix socket instead of TCP")
	flags.BoolVar(&flagNetrc, "netrc", false, "use .netrc for credentials")
	flags.StringVar(&flagNetrcFile, "netrc-file", "", "use this file instead of ~/.netrc")
	flags.BoolVar(&flagNetrcOptional, "netrc-optional", false, "use .netrc credentials if present, don't fail otherwise")
	flags.BoolVar(&flagIPv4, "ipv4", false, "resolve to IPv4 addresses only")
	flags.BoolVar(&flagIPv6, "ipv6", false, "resolve to IPv6 addresses only")
	flags.Int64Var(&flagLimitRate, "limit-rate", 0, "maximum transfer rate in bytes/s (0 = unlimited)")
	flags.StringVar(&flagCACert, "cacert", "", "CA bundle to verify the server certificate against")
	flags.StringVar(&flagCert, "cert", "", "client certificate file")
	flags.StringVar(&flagKey, "key", "", "client private key file")
	flags.StringVar(&flagUser, "user", "", "user:password for Basic authentication")

	cobra.OnInitialize(initConfig)
	bindViperFlags(flags)
}

// initConfig loads .rqrc (if present) and environment variables as
// defaults underneath the flags just declared (SPEC_FULL.md
// "Configuration").
func initConfig() {
	viper.SetConfigName(".rqrc")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("RQ")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // absence of .rqrc is not an error
}

func bindViperFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})
}
