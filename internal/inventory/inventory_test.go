package inventory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	pkgerrors "proxyrank/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadSelectsLoopbackSocksInbounds(t *testing.T) {
	path := writeConfig(t, `{
		"inbounds": [
			{"type": "socks", "tag": "hk-01", "listen": "127.0.0.1", "listen_port": 2080},
			{"type": "socks", "tag": "sg-01", "listen_port": 2081},
			{"type": "socks", "tag": "exposed", "listen": "0.0.0.0", "listen_port": 2082},
			{"type": "socks", "tag": "v6-local", "listen": "::1", "listen_port": 2083},
			{"type": "mixed", "tag": "not-socks", "listen": "127.0.0.1", "listen_port": 2084},
			{"type": "socks", "listen": "127.0.0.1", "listen_port": 2085},
			{"type": "socks", "tag": "no-port", "listen": "127.0.0.1"}
		]
	}`)

	endpoints, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []Endpoint{
		{Tag: "hk-01", Port: 2080},
		{Tag: "sg-01", Port: 2081},
		{Tag: "v6-local", Port: 2083},
	}
	if len(endpoints) != len(want) {
		t.Fatalf("got %d endpoints, want %d: %+v", len(endpoints), len(want), endpoints)
	}
	for i := range want {
		if endpoints[i] != want[i] {
			t.Errorf("endpoint %d = %+v, want %+v", i, endpoints[i], want[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, pkgerrors.ErrConfigUnreadable) {
		t.Errorf("error = %v, want ErrConfigUnreadable", err)
	}
	var invErr *pkgerrors.InventoryError
	if !errors.As(err, &invErr) {
		t.Errorf("error %v is not an InventoryError", err)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{"inbounds": [`)
	if _, err := Load(path); !errors.Is(err, pkgerrors.ErrConfigInvalid) {
		t.Errorf("error = %v, want ErrConfigInvalid", err)
	}
}

func TestLoadNoInboundsField(t *testing.T) {
	path := writeConfig(t, `{"outbounds": []}`)
	if _, err := Load(path); !errors.Is(err, pkgerrors.ErrNoInbounds) {
		t.Errorf("error = %v, want ErrNoInbounds", err)
	}
}

func TestLoadNoSocksInbounds(t *testing.T) {
	path := writeConfig(t, `{"inbounds": [{"type": "tun", "tag": "tun-in"}]}`)
	if _, err := Load(path); !errors.Is(err, pkgerrors.ErrNoSocksInbounds) {
		t.Errorf("error = %v, want ErrNoSocksInbounds", err)
	}
}

func TestCompileFiltersInvalidPattern(t *testing.T) {
	if _, err := CompileFilters([]string{"valid", "(unclosed"}); !errors.Is(err, pkgerrors.ErrPatternInvalid) {
		t.Errorf("error = %v, want ErrPatternInvalid", err)
	}
}

func TestFilterAllPatternsMustMatch(t *testing.T) {
	endpoints := []Endpoint{
		{Tag: "HK premium 01", Port: 1},
		{Tag: "HK basic 02", Port: 2},
		{Tag: "SG premium 03", Port: 3},
	}

	filters, err := CompileFilters([]string{"HK", "premium"})
	if err != nil {
		t.Fatalf("CompileFilters: %v", err)
	}

	got, err := Filter(endpoints, filters)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(got) != 1 || got[0].Port != 1 {
		t.Errorf("filtered = %+v, want only port 1", got)
	}
}

func TestFilterNoFiltersPassesAll(t *testing.T) {
	endpoints := []Endpoint{{Tag: "a", Port: 1}, {Tag: "b", Port: 2}}
	got, err := Filter(endpoints, nil)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d endpoints, want 2", len(got))
	}
}

func TestFilterNoMatch(t *testing.T) {
	endpoints := []Endpoint{{Tag: "HK-01", Port: 1}}
	filters, err := CompileFilters([]string{"^JP"})
	if err != nil {
		t.Fatalf("CompileFilters: %v", err)
	}
	if _, err := Filter(endpoints, filters); !errors.Is(err, pkgerrors.ErrNoMatchingNodes) {
		t.Errorf("error = %v, want ErrNoMatchingNodes", err)
	}
}
