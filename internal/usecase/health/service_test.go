package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type fakeCap bool

func (c fakeCap) Available() bool { return bool(c) }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockChecker{}, &mockPinger{}, &mockChecker{}, fakeCap(true))
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, c := range []string{ComponentCatalog, ComponentCache, ComponentEmbedding} {
		if r.Checks[c] != CheckOK {
			t.Errorf("expected %s %q, got %q", c, CheckOK, r.Checks[c])
		}
	}
}

func TestCheck_CatalogError(t *testing.T) {
	svc := New(&mockChecker{err: errors.New("conn refused")}, &mockPinger{}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[ComponentCatalog] != CheckError {
		t.Errorf("expected catalog %q, got %q", CheckError, r.Checks[ComponentCatalog])
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockChecker{}, &mockPinger{err: errors.New("timeout")}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentCache] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks[ComponentCache])
	}
}

func TestCheck_EmbeddingError(t *testing.T) {
	svc := New(&mockChecker{}, nil, &mockChecker{err: errors.New("timeout")}, fakeCap(true))
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentEmbedding] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks[ComponentEmbedding])
	}
}

func TestCheck_EmbeddingDisabled(t *testing.T) {
	embedding := &mockChecker{err: errors.New("should not be called")}
	svc := New(&mockChecker{}, nil, embedding, fakeCap(false))
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("fallback mode is healthy, got %q", r.Status)
	}
	if r.Checks[ComponentEmbedding] != CheckDisabled {
		t.Errorf("expected embedding %q, got %q", CheckDisabled, r.Checks[ComponentEmbedding])
	}
}

func TestCheck_OptionalComponentsOmitted(t *testing.T) {
	svc := New(&mockChecker{}, nil, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 1 {
		t.Errorf("expected only the catalog check, got %v", r.Checks)
	}
}
