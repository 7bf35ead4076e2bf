package util

import (
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc returns a proxy selector for http.Transport. Explicit proxies win
// over HTTP_PROXY/HTTPS_PROXY; hosts listed in noProxy (comma separated, suffix
// match) always connect directly.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	bypass := splitNoProxy(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		host := req.URL.Hostname()
		for _, suffix := range bypass {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return nil, nil
			}
		}

		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func splitNoProxy(noProxy string) []string {
	var hosts []string
	for _, h := range strings.Split(noProxy, ",") {
		h = strings.TrimPrefix(strings.TrimSpace(h), ".")
		if h != "" {
			hosts = append(hosts, strings.ToLower(h))
		}
	}
	return hosts
}
