package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/grafana/pyroscope-go"

	"github.com/riskibarqy/rugby-analytics/internal/config"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
)

// Profiling holds the optional pprof listener and pyroscope session of a
// long-running process. Both are off by default.
type Profiling struct {
	logger    *logging.Logger
	pprof     *http.Server
	pyroscope *pyroscope.Profiler
}

func StartProfiling(cfg config.Config, logger *logging.Logger) (*Profiling, error) {
	p := &Profiling{logger: logging.OrDefault(logger).Named("profiling")}

	if cfg.PprofEnabled {
		if err := p.startPprof(cfg.PprofAddr); err != nil {
			return nil, err
		}
	}

	if cfg.PyroscopeEnabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName:   cfg.PyroscopeAppName,
			ServerAddress:     cfg.PyroscopeServerAddress,
			AuthToken:         cfg.PyroscopeAuthToken,
			BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
			BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
			UploadRate:        cfg.PyroscopeUploadRate,
			Tags: map[string]string{
				"env":     cfg.AppEnv,
				"service": cfg.ServiceName,
				"version": cfg.ServiceVersion,
			},
			// Aggregation runs a worker pool, so contention profiles matter
			// more than the allocation breakdowns.
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileInuseSpace,
				pyroscope.ProfileGoroutines,
				pyroscope.ProfileMutexCount,
				pyroscope.ProfileMutexDuration,
				pyroscope.ProfileBlockDuration,
			},
		})
		if err != nil {
			return nil, errors.Join(err, p.Stop(context.Background()))
		}
		p.pyroscope = profiler
		p.logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	}

	return p, nil
}

// PprofAddr is the bound pprof address, empty when pprof is off.
func (p *Profiling) PprofAddr() string {
	if p == nil || p.pprof == nil {
		return ""
	}
	return p.pprof.Addr
}

// Stop shuts pprof down within ctx and flushes pyroscope.
func (p *Profiling) Stop(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.pprof != nil {
		errs = append(errs, p.pprof.Shutdown(ctx))
		p.pprof = nil
	}
	if p.pyroscope != nil {
		errs = append(errs, p.pyroscope.Stop())
		p.pyroscope = nil
	}
	return errors.Join(errs...)
}

// startPprof binds before returning so a taken port fails startup instead
// of a background goroutine.
func (p *Profiling) startPprof(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	p.pprof = &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := p.pprof
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("pprof server failed", "error", err)
		}
	}()
	p.logger.Info("pprof listening", "addr", srv.Addr)
	return nil
}
