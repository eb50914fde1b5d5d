package observability

import (
	"context"
	"net/http"
	"testing"

	"github.com/riskibarqy/rugby-analytics/internal/config"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "rugby-analytics",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	shutdown, err := InitUptrace(cfg, "ingest", logging.NewNop())
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestInitUptrace_EnabledWithoutDSNIsNoop(t *testing.T) {
	cfg := config.Config{UptraceEnabled: true, ServiceName: "rugby-analytics"}

	shutdown, err := InitUptrace(cfg, "", logging.NewNop())
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestStartProfiling_DisabledIsNoop(t *testing.T) {
	p, err := StartProfiling(config.Config{}, logging.NewNop())
	if err != nil {
		t.Fatalf("start profiling: %v", err)
	}
	if p.PprofAddr() != "" {
		t.Fatalf("expected no pprof listener, got %q", p.PprofAddr())
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop profiling: %v", err)
	}
}

func TestStartProfiling_ServesPprof(t *testing.T) {
	p, err := StartProfiling(config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, logging.NewNop())
	if err != nil {
		t.Fatalf("start profiling: %v", err)
	}
	t.Cleanup(func() { _ = p.Stop(context.Background()) })

	resp, err := http.Get("http://" + p.PprofAddr() + "/debug/pprof/cmdline")
	if err != nil {
		t.Fatalf("get pprof: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from pprof, got %d", resp.StatusCode)
	}
}
