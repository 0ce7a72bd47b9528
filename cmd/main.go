// The elemhide command runs a filtering MITM proxy that hides page elements
// matched by the loaded cosmetic rules.  It can also be used as a one-shot
// tool: given a hostname, it prints the applicable rules (or, given an HTML
// file as well, the matched elements) and exits.
package main

import (
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdguardTeam/golibs/log"
	"github.com/AdguardTeam/gomitmproxy"
	"github.com/AdguardTeam/gomitmproxy/mitm"
	goFlags "github.com/jessevdk/go-flags"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/filterkit/elemhide"
	"github.com/filterkit/elemhide/dom"
	"github.com/filterkit/elemhide/filterlist"
	"github.com/filterkit/elemhide/filterutil"
	"github.com/filterkit/elemhide/proxy"
)

// Options -- console arguments
type Options struct {
	// Verbose - should we write debug-level log
	Verbose bool `short:"v" long:"verbose" description:"Verbose output (optional)." optional:"yes" optional-value:"true"`

	// LogOutput - path to the log file
	LogOutput string `short:"o" long:"output" description:"Path to the log file. If not set, it writes to stderr." default:""`

	// FilterLists - paths to the filter lists
	FilterLists []string `short:"f" long:"filter" description:"Path to the filter list. Can be specified multiple times."`

	// Hostname - if set, runs a one-shot query instead of the proxy
	Hostname string `short:"d" long:"hostname" description:"Print the rules applicable to this hostname and exit."`

	// InputHTML - path to an HTML file for the one-shot query
	InputHTML string `short:"i" long:"input" description:"Path to an HTML file to match elements in. Used together with --hostname."`

	// ListenAddr - server listen address
	ListenAddr string `short:"l" long:"listen" description:"Listen address." default:"0.0.0.0"`

	// ListenPort - server listen port
	ListenPort int `short:"p" long:"port" description:"Listen port." default:"8080"`

	// TLSCertPath - path to the .crt with the certificate chain
	TLSCertPath string `short:"c" long:"ca-cert" description:"Path to a file with the root certificate."`

	// TLSKeyPath - path to the file with the private key
	TLSKeyPath string `short:"k" long:"ca-key" description:"Path to a file with the CA private key."`

	// ProxyUser - proxy auth username
	ProxyUser string `short:"u" long:"username" description:"Proxy auth username. If specified, proxy authorization is required."`

	// ProxyPassword - proxy password
	ProxyPassword string `short:"a" long:"password" description:"Proxy auth password. If specified, proxy authorization is required."`

	// HTTPSProxy - if specified, start a HTTPS proxy. Otherwise, it will start an HTTP proxy.
	HTTPSProxy bool `short:"t" long:"https" description:"Run an HTTPS proxy (otherwise, it runs plain HTTP proxy)." optional:"yes" optional-value:"true"`

	// HTTPSHostname - server name for the HTTPS proxy.
	HTTPSHostname string `short:"n" long:"https-name" description:"Server name or IP address of the HTTPS proxy."`
}

func main() {
	var options Options
	var parser = goFlags.NewParser(&options, goFlags.Default)

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*goFlags.Error); ok && flagsErr.Type == goFlags.ErrHelp {
			os.Exit(0)
		} else {
			os.Exit(1)
		}
	}

	run(options)
}

func run(options Options) {
	if options.Verbose {
		log.SetLevel(log.DEBUG)
	}
	if options.LogOutput != "" {
		// nolint: gosec
		file, err := os.OpenFile(options.LogOutput, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("cannot create a log file: %s", err)
		}
		defer file.Close() //nolint
		log.SetOutput(file)
	}

	if options.Hostname != "" {
		runQuery(options)

		return
	}

	runProxy(options)
}

// runQuery loads the filter lists and prints what applies to the hostname.
func runQuery(options Options) {
	start := getRSS()

	var lists []filterlist.RuleList
	for i, path := range options.FilterLists {
		list, err := filterlist.NewFileRuleList(i, path)
		if err != nil {
			log.Fatalf("cannot load filter list %s: %v", path, err)
		}
		lists = append(lists, list)
	}
	defer func() {
		if err := filterlist.Close(lists); err != nil {
			log.Error("closing rule lists: %v", err)
		}
	}()

	ruleSet := elemhide.NewRuleSet(filterlist.Load(lists))
	log.Debug("RSS after loading rules - %d kB (%d kB diff)", getRSS()/1024, (getRSS()-start)/1024)

	if options.InputHTML != "" {
		printMatchedElements(ruleSet, options.Hostname, options.InputHTML)

		return
	}

	applicable := ruleSet.RulesForDomain(options.Hostname)
	if applicable == nil {
		fmt.Printf("no rules apply to %s\n", options.Hostname)

		return
	}

	for _, r := range applicable {
		fmt.Println(r.Text())
	}
}

// printMatchedElements parses the HTML file and prints the elements matched
// by the rules applicable to the hostname.
func printMatchedElements(ruleSet *elemhide.RuleSet, hostname, path string) {
	// nolint: gosec
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("cannot open %s: %v", path, err)
	}
	defer f.Close() //nolint

	doc, err := dom.Parse(f)
	if err != nil {
		log.Fatalf("cannot parse %s: %v", path, err)
	}

	elements := ruleSet.MatchedElements(doc, hostname)
	if elements == nil {
		fmt.Printf("no elements matched on %s\n", hostname)

		return
	}

	for _, el := range elements {
		fmt.Println(el.OuterHTML())
	}
}

// runProxy starts the filtering proxy and blocks until a signal arrives.
func runProxy(options Options) {
	log.Printf("starting proxy")

	config := createServerConfig(options)
	server, err := proxy.NewServer(config)
	if err != nil {
		log.Fatalf("failed to create new proxy server: %v", err)
	}

	err = server.Start()
	if err != nil {
		log.Fatalf("failed to start the proxy server: %v", err)
	}

	log.Debug("RSS after starting the proxy - %d kB", getRSS()/1024)

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
	<-signalChannel

	server.Close()
}

func createServerConfig(options Options) proxy.Config {
	listenIP := filterutil.ParseIP(options.ListenAddr)
	if listenIP == nil {
		log.Fatalf("cannot parse %s", options.ListenAddr)
	}

	mitmConfig := createMITMConfig(options)

	var tlsConfig *tls.Config
	if options.HTTPSProxy {
		if options.HTTPSHostname == "" {
			log.Fatalf("HTTPS hostname must be specified")
		}

		proxyCert, err := mitmConfig.GetOrCreateCert(options.HTTPSHostname)
		if err != nil {
			log.Fatalf("failed to generate HTTPS proxy certificate for %s: %v", options.HTTPSHostname, err)
		}
		tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{*proxyCert},
			ServerName:   options.HTTPSHostname,
		}
	}

	config := proxy.Config{
		FiltersPaths: map[int]string{},
	}
	for i, v := range options.FilterLists {
		config.FiltersPaths[i] = v
	}

	addr := &net.TCPAddr{IP: listenIP, Port: options.ListenPort}
	config.ProxyConfig = gomitmproxy.Config{
		ListenAddr: addr,
		TLSConfig:  tlsConfig,

		Username: options.ProxyUser,
		Password: options.ProxyPassword,

		MITMConfig: mitmConfig,
	}

	return config
}

func createMITMConfig(options Options) *mitm.Config {
	if options.TLSCertPath == "" || options.TLSKeyPath == "" {
		log.Fatalf("CA certificate and key must be specified to run the proxy")
	}

	tlsCert, err := tls.LoadX509KeyPair(options.TLSCertPath, options.TLSKeyPath)
	if err != nil {
		log.Fatalf("failed to load root CA: %v", err)
	}
	privateKey := tlsCert.PrivateKey.(*rsa.PrivateKey)

	x509c, err := x509.ParseCertificate(tlsCert.Certificate[0])
	if err != nil {
		log.Fatalf("invalid certificate: %v", err)
	}

	mitmConfig, err := mitm.NewConfig(x509c, privateKey, nil)
	if err != nil {
		log.Fatalf("failed to create MITM config: %v", err)
	}

	mitmConfig.SetValidity(time.Hour * 24 * 7) // generate certs valid for 7 days
	mitmConfig.SetOrganization("elemhide")     // cert organization

	return mitmConfig
}

// getRSS returns the resident set size of this process.
func getRSS() uint64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}

	minfo, err := proc.MemoryInfo()
	if err != nil {
		return 0
	}

	return minfo.RSS
}
