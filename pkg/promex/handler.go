package promex

import (
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// Handler returns an HTTP handler serving the registry's metrics in the
// Prometheus exposition formats. Mount it on the scrape path:
//
//	mux.Handle("/metrics", reg.Handler())
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// WriteText writes the registry's current state to w in the text
// exposition format. This is the same representation a scrape returns;
// it is what push clients upload and what tests assert against.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("gather registry: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return fmt.Errorf("encode family %q: %w", family.GetName(), err)
		}
	}
	return nil
}
