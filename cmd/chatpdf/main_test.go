package main

import (
	"testing"
	"time"

	"github.com/Mikedodunnit/Chatpdf/internal/config"
)

func TestRootCommands(t *testing.T) {
	root := rootCMD()
	want := map[string]bool{"serve": false, "ingest": false, "context": false, "delete": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
	if root.PersistentFlags().Lookup("env") == nil {
		t.Error("missing --env flag")
	}
}

func TestArgsValidation(t *testing.T) {
	tests := []struct {
		args []string
	}{
		{[]string{"ingest"}},
		{[]string{"context", "only-key"}},
		{[]string{"delete", "a", "b"}},
	}
	for _, tt := range tests {
		root := rootCMD()
		root.SetArgs(tt.args)
		root.SilenceErrors = true
		if err := root.Execute(); err == nil {
			t.Errorf("%v: expected argument error", tt.args)
		}
	}
}

func TestPolicy(t *testing.T) {
	p := policy(2, 3*time.Second)
	if p.MaxRetries != 2 || p.Timeout != 3*time.Second {
		t.Errorf("unexpected policy %+v", p)
	}
	if p.InitialInterval <= 0 {
		t.Error("expected default backoff interval")
	}
}

func TestBuildBlobStore(t *testing.T) {
	if _, err := buildBlobStore(config.StorageConfig{Driver: config.StorageFS, Root: t.TempDir()}); err != nil {
		t.Errorf("fs: %v", err)
	}
	if _, err := buildBlobStore(config.StorageConfig{
		Driver: config.StorageHTTP, BaseURL: "http://localhost", Bucket: "docs",
	}); err != nil {
		t.Errorf("http: %v", err)
	}
	if _, err := buildBlobStore(config.StorageConfig{Driver: "s3"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}
