package server

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/felixgeelhaar/pmos/internal/errors"
	"github.com/felixgeelhaar/pmos/internal/gate"
	"github.com/felixgeelhaar/pmos/internal/log"
	"github.com/felixgeelhaar/pmos/internal/metrics"
)

// newProxy forwards allowed requests to the web application. The gate's
// identity headers travel with the request; X-Forwarded-* are rewritten.
func newProxy(upstream string, m *metrics.Metrics, logger *log.Logger) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(upstream)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, errors.NewConfigInvalidError("upstream url " + upstream + " is not an absolute URL")
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = pr.In.Host
		},
		ModifyResponse: func(resp *http.Response) error {
			m.ObserveUpstream(resp.StatusCode)
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			m.ObserveUpstream(http.StatusBadGateway)
			logger.WithContext(r.Context()).WarnContext(r.Context(), "upstream request failed",
				"path", r.URL.Path, "error", err.Error())
			gate.WriteError(w, http.StatusBadGateway, "Bad Gateway")
		},
	}, nil
}
