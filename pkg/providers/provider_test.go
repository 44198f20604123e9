package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
)

// mockSource implements Source for testing
type mockSource struct {
	meta   SourceMetadata
	result feedtypes.FetchResult
}

func (m *mockSource) Fetch(ctx context.Context) feedtypes.FetchResult { return m.result }
func (m *mockSource) Metadata() SourceMetadata                        { return m.meta }

func newMockFactory() ProviderFactory {
	return func(config any) (Source, error) {
		name, _ := config.(string)
		return &mockSource{meta: SourceMetadata{Name: name}}, nil
	}
}

func TestNewProviderRegistry(t *testing.T) {
	registry := NewProviderRegistry()
	if registry == nil {
		t.Fatal("NewProviderRegistry() returned nil")
	}
	if len(registry.providers) != 0 {
		t.Errorf("NewProviderRegistry() should start with empty providers map")
	}
}

func TestProviderRegistry_Register(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*ProviderRegistry)
		provider string
		wantErr  bool
	}{
		{
			name:     "successful registration",
			setup:    func(r *ProviderRegistry) {},
			provider: "rss",
			wantErr:  false,
		},
		{
			name: "duplicate registration fails",
			setup: func(r *ProviderRegistry) {
				_ = r.Register("rss", &ProviderInfo{Name: "RSS", Factory: newMockFactory()})
			},
			provider: "rss",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewProviderRegistry()
			tt.setup(registry)

			err := registry.Register(tt.provider, &ProviderInfo{Name: "Test", Factory: newMockFactory()})
			if (err != nil) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if _, err := registry.Get(tt.provider); err != nil {
				t.Errorf("Get() after Register() error = %v", err)
			}
		})
	}
}

func TestProviderRegistry_Get(t *testing.T) {
	registry := NewProviderRegistry()
	info := &ProviderInfo{Name: "RSS", Description: "feeds", Factory: newMockFactory()}
	_ = registry.Register("rss", info)

	got, err := registry.Get("rss")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != info {
		t.Errorf("Get() = %v, want %v", got, info)
	}

	if _, err := registry.Get("missing"); err == nil {
		t.Error("Get() for unknown provider should fail")
	}
}

func TestProviderRegistry_ListSorted(t *testing.T) {
	registry := NewProviderRegistry()
	for _, name := range []string{"rss", "facebook", "newspage"} {
		_ = registry.Register(name, &ProviderInfo{Name: name, Factory: newMockFactory()})
	}

	list := registry.List()
	want := []string{"facebook", "newspage", "rss"}
	if len(list) != len(want) {
		t.Fatalf("List() = %v, want %v", list, want)
	}
	for i := range want {
		if list[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, list[i], want[i])
		}
	}
}

func TestProviderRegistry_CreateProvider(t *testing.T) {
	registry := NewProviderRegistry()
	_ = registry.Register("success", &ProviderInfo{Name: "Success", Factory: newMockFactory()})
	_ = registry.Register("fail", &ProviderInfo{
		Name: "Fail",
		Factory: func(config any) (Source, error) {
			return nil, errors.New("creation failed")
		},
	})

	tests := []struct {
		name     string
		provider string
		config   any
		wantErr  bool
	}{
		{name: "successful creation", provider: "success", config: "city-events"},
		{name: "provider not found", provider: "non-existent", wantErr: true},
		{name: "factory fails", provider: "fail", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := registry.CreateProvider(tt.provider, tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && src.Metadata().Name != tt.config {
				t.Errorf("CreateProvider() source name = %q, want %q", src.Metadata().Name, tt.config)
			}
		})
	}
}

func TestProviderRegistry_Concurrent(t *testing.T) {
	registry := NewProviderRegistry()

	const numGoroutines = 10
	const numProviders = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines * 2)
	for i := 0; i < numGoroutines; i++ {
		go func(offset int) {
			defer wg.Done()
			for j := 0; j < numProviders; j++ {
				name := fmt.Sprintf("provider-%d-%d", offset, j)
				_ = registry.Register(name, &ProviderInfo{Name: name, Factory: newMockFactory()})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < numProviders; j++ {
				registry.List()
			}
		}()
	}
	wg.Wait()

	if got := len(registry.List()); got != numGoroutines*numProviders {
		t.Errorf("List() has %d providers, want %d", got, numGoroutines*numProviders)
	}
}

func TestSet(t *testing.T) {
	set := NewSet()

	for _, name := range []string{"city-events", "facebook"} {
		if err := set.Add(&mockSource{meta: SourceMetadata{Name: name}}); err != nil {
			t.Fatalf("Add(%q) error = %v", name, err)
		}
	}

	if err := set.Add(&mockSource{meta: SourceMetadata{Name: "facebook"}}); err == nil {
		t.Error("Add() of duplicate name should fail")
	}
	if err := set.Add(&mockSource{}); err == nil {
		t.Error("Add() of unnamed source should fail")
	}

	if _, ok := set.Get("city-events"); !ok {
		t.Error("Get(city-events) not found")
	}
	if _, ok := set.Get("missing"); ok {
		t.Error("Get(missing) should not be found")
	}

	all := set.All()
	if len(all) != 2 || all[0].Metadata().Name != "city-events" || all[1].Metadata().Name != "facebook" {
		t.Errorf("All() order = %v, want [city-events facebook]", all)
	}
}
