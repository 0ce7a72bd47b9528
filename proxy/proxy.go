// Package proxy implements a MITM proxy that uses the elemhide engine to
// inject element-hiding styles into the pages passing through it.
package proxy

import (
	"fmt"
	"sync"

	"github.com/AdguardTeam/golibs/log"
	"github.com/AdguardTeam/gomitmproxy"

	"github.com/filterkit/elemhide"
	"github.com/filterkit/elemhide/filterlist"
	"github.com/filterkit/elemhide/rules"
)

// Config contains the MITM proxy configuration
type Config struct {
	// ProxyConfig is the configuration of the underlying MITM proxy
	ProxyConfig gomitmproxy.Config

	// FiltersPaths are paths to the filtering rule lists, keyed by the
	// list identifier
	FiltersPaths map[int]string
}

// String returns the server's configuration description
func (c *Config) String() string {
	str := ""
	str += fmt.Sprintf("Listen addr: %s\n", c.ProxyConfig.ListenAddr.String())
	str += fmt.Sprintf("MITM status: %v\n", c.ProxyConfig.MITMConfig != nil)
	str += fmt.Sprintf("Run as HTTPS proxy: %v\n", c.ProxyConfig.TLSConfig != nil)

	if c.ProxyConfig.Username != "" {
		str += fmt.Sprintf("Proxy auth: %s/%s\n", c.ProxyConfig.Username, c.ProxyConfig.Password)
	}

	if len(c.FiltersPaths) > 0 {
		str += fmt.Sprintf("Filter lists: %d\n", len(c.FiltersPaths))
		for i, v := range c.FiltersPaths {
			str += fmt.Sprintf("%d: %s\n", i, v)
		}
	}

	return str
}

// Server contains the current server state
type Server struct {
	// the MITM proxy server instance
	proxyServer *gomitmproxy.Proxy

	// ruleSetMu serializes access to ruleSet.  The rule set performs no
	// internal locking, and a domain query is not a pure read -- it may
	// rebuild the derived exception state.
	ruleSetMu sync.Mutex

	// the cosmetic filtering engine
	ruleSet *elemhide.RuleSet

	// the rule lists the engine was built from
	lists []filterlist.RuleList

	Config // Server configuration
}

// NewServer creates a new instance of the MITM server
func NewServer(config Config) (*Server, error) {
	log.Info("Initializing the proxy server:\n%s", config.String())

	s := &Server{
		Config: config,
	}

	ruleSet, lists, err := buildRuleSet(config)
	if err != nil {
		return nil, err
	}

	s.ruleSet = ruleSet
	s.lists = lists
	s.ProxyConfig.OnRequest = s.onRequest
	s.ProxyConfig.OnResponse = s.onResponse
	s.proxyServer = gomitmproxy.NewProxy(s.ProxyConfig)

	return s, nil
}

// Start starts the proxy server
func (s *Server) Start() error {
	return s.proxyServer.Start()
}

// Close stops the proxy server and releases the rule lists
func (s *Server) Close() {
	s.proxyServer.Close()

	if err := filterlist.Close(s.lists); err != nil {
		log.Error("closing rule lists: %v", err)
	}
}

// rulesForHostname queries the engine for the rules applicable to hostname.
func (s *Server) rulesForHostname(hostname string) []rules.Rule {
	s.ruleSetMu.Lock()
	defer s.ruleSetMu.Unlock()

	return s.ruleSet.RulesForDomain(hostname)
}

// buildRuleSet builds a new cosmetic filtering engine from the configured
// rule lists
func buildRuleSet(config Config) (*elemhide.RuleSet, []filterlist.RuleList, error) {
	var lists []filterlist.RuleList

	for filterID, path := range config.FiltersPaths {
		list, err := filterlist.NewFileRuleList(filterID, path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create rule list %d: %w", filterID, err)
		}
		lists = append(lists, list)
	}

	return elemhide.NewRuleSet(filterlist.Load(lists)), lists, nil
}
